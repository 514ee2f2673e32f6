// Package protocol implements the framed wire protocol used to edit Flash on
// a remote part over a serial link.
//
// # Protocol Overview
//
// Every exchange is one command frame answered by one response frame:
//
//	Command:  [SOP][CMD][LEN_L][LEN_H][DATA...][CHECKSUM_L][CHECKSUM_H][EOP]
//	Response: [SOP][STATUS][LEN_L][LEN_H][DATA...][CHECKSUM_L][CHECKSUM_H][EOP]
//
// Where:
//   - SOP = Start of Packet (0x01)
//   - EOP = End of Packet (0x17)
//   - LEN = 16-bit data length (little-endian)
//   - CHECKSUM = 16-bit checksum (little-endian, 2's complement)
//
// Multi-byte fields in the data are little-endian; addresses are 32 bits.
//
// # Commands
//
//	0x30 Identify    -                      -> [FLASH_SIZE(4)][PAGE_SIZE(2)][NAME]
//	0x31 ByteRead    [ADDR]                 -> [VALUE]
//	0x32 ByteWrite   [ADDR][VALUE]
//	0x33 PageErase   [ADDR]
//	0x34 Read        [ADDR][N(2)]           -> [DATA(N)]
//	0x35 Write       [ADDR][DATA]
//	0x36 Clear       [ADDR][N(4)]
//	0x37 Update      [ADDR][DATA]
//	0x38 Copy        [DEST][SRC][N(4)]
//	0x39 Fill        [ADDR][N(4)][VALUE]
//
// # Command Builders
//
// Use the Build* functions to create command frames:
//
//	frame, err := protocol.BuildWriteCmd(0x5E00, []byte("ABCDEFG"))
//
// # Response Parsers
//
// Use ParseFrame to validate and extract data from response frames:
//
//	status, data, err := protocol.ParseFrame(frame)
//	if status != protocol.StatusSuccess {
//	    return &protocol.ProtocolError{Operation: "write", StatusCode: status}
//	}
//
// Then use the Parse* functions for command-specific data:
//
//	info, err := protocol.ParseIdentifyResponse(data)
//	value, err := protocol.ParseByteReadResponse(data)
//
// # Error Handling
//
// Status codes other than StatusSuccess indicate errors. ProtocolError gives
// them structure:
//
//	err := &protocol.ProtocolError{Operation: "clear", StatusCode: protocol.ErrScratch}
//	// err.Error() returns: "clear failed: range overlaps scratch page (0x0C)"
package protocol
