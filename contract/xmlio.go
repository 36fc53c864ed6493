package contract

import "github.com/marius-klimantavicius/data-contracts-sub001/pkg/xmlio"

// XMLWriter and XMLReader are the cursors handed to XMLSerializable values.
type (
	XMLWriter = xmlio.Writer
	XMLReader = xmlio.Reader
)
