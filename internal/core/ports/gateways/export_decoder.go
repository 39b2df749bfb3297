package gateways

// ExportDecoder turns the stored bytes of an export into text for extraction.
type ExportDecoder interface {
	Decode(filename string, contentType string, data []byte) (string, error)
}
