package contract

// PrimitiveContract is the payload of a primitive contract: a pair of
// bound codec functions with no substructure.
type PrimitiveContract struct {
	Encode func(v any) (string, error)
	Decode func(text []byte) (any, error)
}

// XMLSerializable is implemented by values that own their exact XML shape.
//
// WriteXML is called after the wrapper element has been opened and may add
// attributes before writing content. ReadXML is called with the reader on
// the wrapper element and must consume it, end tag included.
type XMLSerializable interface {
	WriteXML(w XMLWriter) error
	ReadXML(r XMLReader) error
}

// XMLContract is the payload of an XML pass-through contract.
type XMLContract struct {
	New func() XMLSerializable
}
