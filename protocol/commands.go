package protocol

import (
	"encoding/binary"
	"fmt"
)

// BuildFrame constructs a frame carrying a command or status code and data.
//
// Frame structure:
//
//	[SOP][CMD/STATUS][LEN_L][LEN_H][DATA...][CHECKSUM_L][CHECKSUM_H][EOP]
//
// Returns the complete frame ready to send, or an error if data exceeds
// MaxDataSize.
func BuildFrame(code byte, data []byte) ([]byte, error) {
	if len(data) > MaxDataSize {
		return nil, fmt.Errorf("data length %d exceeds maximum %d bytes", len(data), MaxDataSize)
	}

	frame := make([]byte, 0, MinFrameSize+len(data))

	// Start of packet
	frame = append(frame, StartOfPacket)

	// Command or status
	frame = append(frame, code)

	// Data length (little-endian)
	frame = binary.LittleEndian.AppendUint16(frame, uint16(len(data)))

	frame = append(frame, data...)

	// Checksum over CMD..DATA
	frame = binary.LittleEndian.AppendUint16(frame, calculatePacketChecksum(frame[1:]))

	// End of packet
	frame = append(frame, EndOfPacket)

	return frame, nil
}

// BuildIdentifyCmd constructs an Identify command frame.
//
//	[SOP][CMD][LEN=0][CHECKSUM_L][CHECKSUM_H][EOP]
func BuildIdentifyCmd() ([]byte, error) {
	return BuildFrame(CmdIdentify, nil)
}

// BuildByteReadCmd constructs a Byte Read command frame.
//
//	[SOP][CMD][LEN_L][LEN_H][ADDR(4)][CHECKSUM_L][CHECKSUM_H][EOP]
func BuildByteReadCmd(addr uint32) ([]byte, error) {
	return BuildFrame(CmdByteRead, binary.LittleEndian.AppendUint32(nil, addr))
}

// BuildByteWriteCmd constructs a Byte Write command frame.
//
//	[SOP][CMD][LEN_L][LEN_H][ADDR(4)][VALUE][CHECKSUM_L][CHECKSUM_H][EOP]
func BuildByteWriteCmd(addr uint32, value byte) ([]byte, error) {
	data := binary.LittleEndian.AppendUint32(nil, addr)
	return BuildFrame(CmdByteWrite, append(data, value))
}

// BuildPageEraseCmd constructs a Page Erase command frame.
//
//	[SOP][CMD][LEN_L][LEN_H][ADDR(4)][CHECKSUM_L][CHECKSUM_H][EOP]
func BuildPageEraseCmd(addr uint32) ([]byte, error) {
	return BuildFrame(CmdPageErase, binary.LittleEndian.AppendUint32(nil, addr))
}

// BuildReadCmd constructs a Read command frame for n bytes at addr.
// The response must fit in one frame, so n may not exceed MaxDataSize.
//
//	[SOP][CMD][LEN_L][LEN_H][ADDR(4)][N_L][N_H][CHECKSUM_L][CHECKSUM_H][EOP]
func BuildReadCmd(addr uint32, n uint16) ([]byte, error) {
	if n == 0 || n > MaxDataSize {
		return nil, fmt.Errorf("read length %d outside 1-%d", n, MaxDataSize)
	}
	data := binary.LittleEndian.AppendUint32(nil, addr)
	return BuildFrame(CmdRead, binary.LittleEndian.AppendUint16(data, n))
}

// BuildWriteCmd constructs a Write command frame.
//
//	[SOP][CMD][LEN_L][LEN_H][ADDR(4)][DATA...][CHECKSUM_L][CHECKSUM_H][EOP]
func BuildWriteCmd(addr uint32, data []byte) ([]byte, error) {
	return buildAddrData(CmdWrite, addr, data)
}

// BuildUpdateCmd constructs an Update command frame.
//
//	[SOP][CMD][LEN_L][LEN_H][ADDR(4)][DATA...][CHECKSUM_L][CHECKSUM_H][EOP]
func BuildUpdateCmd(addr uint32, data []byte) ([]byte, error) {
	return buildAddrData(CmdUpdate, addr, data)
}

// BuildClearCmd constructs a Clear command frame.
//
//	[SOP][CMD][LEN_L][LEN_H][ADDR(4)][N(4)][CHECKSUM_L][CHECKSUM_H][EOP]
func BuildClearCmd(addr uint32, n uint32) ([]byte, error) {
	data := binary.LittleEndian.AppendUint32(nil, addr)
	return BuildFrame(CmdClear, binary.LittleEndian.AppendUint32(data, n))
}

// BuildCopyCmd constructs a Copy command frame.
//
//	[SOP][CMD][LEN_L][LEN_H][DEST(4)][SRC(4)][N(4)][CHECKSUM_L][CHECKSUM_H][EOP]
func BuildCopyCmd(dest, src uint32, n uint32) ([]byte, error) {
	data := binary.LittleEndian.AppendUint32(nil, dest)
	data = binary.LittleEndian.AppendUint32(data, src)
	return BuildFrame(CmdCopy, binary.LittleEndian.AppendUint32(data, n))
}

// BuildFillCmd constructs a Fill command frame.
//
//	[SOP][CMD][LEN_L][LEN_H][ADDR(4)][N(4)][VALUE][CHECKSUM_L][CHECKSUM_H][EOP]
func BuildFillCmd(addr uint32, n uint32, value byte) ([]byte, error) {
	data := binary.LittleEndian.AppendUint32(nil, addr)
	data = binary.LittleEndian.AppendUint32(data, n)
	return BuildFrame(CmdFill, append(data, value))
}

func buildAddrData(cmd byte, addr uint32, payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("data cannot be empty")
	}
	if len(payload) > MaxDataSize-AddrSize {
		return nil, fmt.Errorf("data length %d exceeds maximum %d bytes", len(payload), MaxDataSize-AddrSize)
	}
	data := make([]byte, 0, AddrSize+len(payload))
	data = binary.LittleEndian.AppendUint32(data, addr)
	return BuildFrame(cmd, append(data, payload...))
}

// ParseRequest decodes the data of a command frame.
// It returns a *ProtocolError with ErrCommand for an unknown command and
// ErrLength when the data does not match the command's layout.
func ParseRequest(cmd byte, data []byte) (*Request, error) {
	req := &Request{Cmd: cmd}

	want := -1 // exact length, or -1 for address plus payload
	switch cmd {
	case CmdIdentify:
		want = 0
	case CmdByteRead, CmdPageErase:
		want = AddrSize
	case CmdByteWrite:
		want = AddrSize + 1
	case CmdRead:
		want = AddrSize + 2
	case CmdClear:
		want = AddrSize + 4
	case CmdCopy:
		want = AddrSize + 8
	case CmdFill:
		want = AddrSize + 5
	case CmdWrite, CmdUpdate:
	default:
		return nil, &ProtocolError{Operation: CommandName(cmd), StatusCode: ErrCommand}
	}

	if want >= 0 && len(data) != want || want < 0 && len(data) <= AddrSize {
		return nil, &ProtocolError{Operation: CommandName(cmd), StatusCode: ErrLength}
	}
	if len(data) >= AddrSize {
		req.Addr = binary.LittleEndian.Uint32(data)
	}

	switch cmd {
	case CmdByteWrite:
		req.Value = data[4]
	case CmdRead:
		req.Len = uint32(binary.LittleEndian.Uint16(data[4:]))
		if req.Len == 0 || req.Len > MaxDataSize {
			return nil, &ProtocolError{Operation: CommandName(cmd), StatusCode: ErrLength}
		}
	case CmdClear:
		req.Len = binary.LittleEndian.Uint32(data[4:])
	case CmdCopy:
		req.Src = binary.LittleEndian.Uint32(data[4:])
		req.Len = binary.LittleEndian.Uint32(data[8:])
	case CmdFill:
		req.Len = binary.LittleEndian.Uint32(data[4:])
		req.Value = data[8]
	case CmdWrite, CmdUpdate:
		req.Data = data[AddrSize:]
	}
	return req, nil
}
