package protocol

// DeviceInfo identifies the part behind an agent.
// Returned by the Identify command.
type DeviceInfo struct {
	// Name is the part name, e.g. "C8051F380"
	Name string

	// FlashSize is the size of code Flash in bytes
	FlashSize uint32

	// PageSize is the erase page size in bytes
	PageSize uint16
}

// Request is a decoded command.
// Fields not carried by the command are zero.
type Request struct {
	// Cmd is the command code
	Cmd byte

	// Addr is the target address (destination for Copy)
	Addr uint32

	// Src is the source address of Copy
	Src uint32

	// Len is the range length of Read, Clear, Copy and Fill
	Len uint32

	// Value is the byte of ByteWrite and Fill
	Value byte

	// Data is the payload of Write and Update
	Data []byte
}
