package protocol

// ProtocolVersion is the version of the remote Flash protocol implemented by
// this package.
const ProtocolVersion = "1.0"

// Frame structure constants.
const (
	// StartOfPacket is the frame start marker (0x01)
	StartOfPacket = 0x01

	// EndOfPacket is the frame end marker (0x17)
	EndOfPacket = 0x17

	// MinFrameSize is the minimum frame size in bytes:
	// SOP(1) + CMD/STATUS(1) + LEN(2) + CHECKSUM(2) + EOP(1)
	MinFrameSize = 7

	// HeaderSize is the number of bytes before the data: SOP, CMD/STATUS, LEN
	HeaderSize = 4
)

// Command codes.
const (
	// CmdIdentify reports the part name and Flash geometry
	CmdIdentify = 0x30

	// CmdByteRead reads one byte
	CmdByteRead = 0x31

	// CmdByteWrite programs one byte
	CmdByteWrite = 0x32

	// CmdPageErase erases the page containing an address
	CmdPageErase = 0x33

	// CmdRead reads a range
	CmdRead = 0x34

	// CmdWrite programs a range
	CmdWrite = 0x35

	// CmdClear erases a range, preserving the rest of its pages
	CmdClear = 0x36

	// CmdUpdate clears then programs a range
	CmdUpdate = 0x37

	// CmdCopy copies a range within Flash
	CmdCopy = 0x38

	// CmdFill programs a range with one value
	CmdFill = 0x39
)

// Status/Error codes.
const (
	// StatusSuccess indicates command was successfully received and executed
	StatusSuccess = 0x00

	// ErrLength indicates data amount is outside expected range
	ErrLength = 0x03

	// ErrData indicates data is not of proper form
	ErrData = 0x04

	// ErrCommand indicates command is not recognized
	ErrCommand = 0x05

	// ErrChecksum indicates packet checksum doesn't match expected value
	ErrChecksum = 0x08

	// ErrAddress indicates an address or range outside the permitted area
	ErrAddress = 0x0A

	// ErrSupply indicates the supply monitor refused a write or erase
	ErrSupply = 0x0B

	// ErrScratch indicates a range overlapping the scratch page
	ErrScratch = 0x0C

	// ErrReset indicates the part reset during a Flash store
	ErrReset = 0x0D

	// ErrUnknown indicates an unknown error occurred
	ErrUnknown = 0x0F
)

// MaxDataSize is the maximum data payload size per packet.
const MaxDataSize = 256

// DefaultChunkSize is the recommended number of Flash bytes moved per
// Read, Write or Update command. It leaves room for the address prefix.
const DefaultChunkSize = 128

// Payload sizes.
const (
	// AddrSize is the size of an address field (4 bytes)
	AddrSize = 4

	// IdentifyResponseMinSize is the data size of an Identify response
	// without the part name (6 bytes)
	IdentifyResponseMinSize = 6

	// ByteReadResponseSize is the data size of a Byte Read response (1 byte)
	ByteReadResponseSize = 1
)
