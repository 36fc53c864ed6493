package datacontract

import (
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/marius-klimantavicius/data-contracts-sub001/contract"
	dcerrors "github.com/marius-klimantavicius/data-contracts-sub001/errors"
	"github.com/marius-klimantavicius/data-contracts-sub001/internal/serialization"
	"github.com/marius-klimantavicius/data-contracts-sub001/internal/telemetry"
	"github.com/marius-klimantavicius/data-contracts-sub001/pkg/xmlio"
)

// Serializer writes and reads documents whose root is declared as one
// contract. It is safe for concurrent use by multiple goroutines.
type Serializer struct {
	resolver contract.Resolver
	root     *contract.DataContract
	cfg      *serialization.Config
	log      zerolog.Logger
}

// New returns a serializer for documents rooted at root. A nil root
// declares the document as anyType.
func New(resolver contract.Resolver, root *contract.DataContract, settings Settings) (*Serializer, error) {
	if resolver == nil {
		return nil, errors.New("datacontract: nil resolver")
	}
	if root == nil {
		root = contract.AnyType()
	}
	if err := root.Validate(); err != nil {
		return nil, dcerrors.Wrap(dcerrors.ErrInvalidContract, err, "invalid root contract").WithType(root.Name.String())
	}
	cfg, err := settings.withDefaults()
	if err != nil {
		return nil, err
	}
	cached, err := newCachedResolver(resolver)
	if err != nil {
		return nil, err
	}
	s := &Serializer{resolver: cached, root: root, cfg: cfg, log: cfg.Logger}
	s.log.Debug().
		Str("root", root.Name.String()).
		Int("known_types", cfg.Known.Len()).
		Int("max_items", cfg.MaxItems).
		Bool("preserve_references", cfg.PreserveObjectReferences).
		Msg("serializer created")
	return s, nil
}

// RootName returns the document element name.
func (s *Serializer) RootName() contract.QName {
	return serialization.RootName(s.root, s.cfg)
}

// WriteObject writes v as a complete document to w.
func (s *Serializer) WriteObject(w io.Writer, v any) error {
	xw := xmlio.NewWriter(w)
	if err := s.WriteObjectTo(xw, v); err != nil {
		return err
	}
	return xw.Flush()
}

// WriteObjectTo writes v as an element to w, which may already hold
// enclosing elements.
func (s *Serializer) WriteObjectTo(w xmlio.Writer, v any) error {
	start := time.Now()
	ctx := serialization.NewWriteContext(w, s.resolver, s.cfg)
	err := s.writeDocument(w, ctx, v)
	s.observe(telemetry.Write, start, ctx.Items(), err)
	return err
}

func (s *Serializer) writeDocument(w xmlio.Writer, ctx *serialization.WriteContext, v any) error {
	if err := serialization.WriteRootStart(w, s.RootName()); err != nil {
		return err
	}
	if err := ctx.WriteRoot(v, s.root); err != nil {
		return err
	}
	return w.WriteEndElement()
}

// WriteStartObject opens the document element. Together with
// WriteObjectContent and WriteEndObject it lets callers add attributes or
// namespace declarations to the root.
func (s *Serializer) WriteStartObject(w xmlio.Writer) error {
	return serialization.WriteRootStart(w, s.RootName())
}

// WriteObjectContent writes v on the element opened by WriteStartObject.
func (s *Serializer) WriteObjectContent(w xmlio.Writer, v any) error {
	start := time.Now()
	ctx := serialization.NewWriteContext(w, s.resolver, s.cfg)
	err := ctx.WriteRoot(v, s.root)
	s.observe(telemetry.Write, start, ctx.Items(), err)
	return err
}

// WriteEndObject closes the document element.
func (s *Serializer) WriteEndObject(w xmlio.Writer) error {
	return w.WriteEndElement()
}

// ReadObject reads a complete document from r. With verifyObjectName the
// document element must match the root name.
func (s *Serializer) ReadObject(r io.Reader, verifyObjectName bool) (any, error) {
	return s.ReadObjectFrom(xmlio.NewReader(r), verifyObjectName)
}

// ReadObjectFrom reads the element r is positioned on.
func (s *Serializer) ReadObjectFrom(r xmlio.Reader, verifyObjectName bool) (any, error) {
	start := time.Now()
	ctx := serialization.NewReadContext(r, s.resolver, s.cfg)
	v, err := ctx.ReadRoot(s.root, verifyObjectName)
	s.observe(telemetry.Read, start, ctx.Items(), err)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// IsStartObject reports whether r is positioned on an element this
// serializer can read.
func (s *Serializer) IsStartObject(r xmlio.Reader) (bool, error) {
	return serialization.IsRootElement(r, s.root, s.cfg)
}

// ReadObjectAs reads a document and asserts its value to T. A nil document
// yields the zero T.
func ReadObjectAs[T any](s *Serializer, r io.Reader) (T, error) {
	var zero T
	v, err := s.ReadObject(r, true)
	if err != nil || v == nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, dcerrors.Newf(dcerrors.ErrContractMissing, "document holds %T, not %T", v, zero).
			WithType(s.root.Name.String())
	}
	return out, nil
}

func (s *Serializer) observe(direction string, start time.Time, items int, err error) {
	m := metrics.Load()
	elapsed := time.Since(start)
	m.Seconds.With(direction).Observe(elapsed.Seconds())
	if err != nil {
		code := "io"
		if c, ok := dcerrors.CodeOf(err); ok {
			code = string(c)
		}
		m.Failures.With(direction, code).Inc()
		s.log.Debug().Err(err).
			Str("direction", direction).
			Str("code", code).
			Int("items", items).
			Msg("serializer call failed")
		return
	}
	m.Documents.With(direction).Inc()
	m.Items.With(direction).Observe(float64(items))
	s.log.Debug().
		Str("direction", direction).
		Int("items", items).
		Dur("elapsed", elapsed).
		Msg("serializer call completed")
}
