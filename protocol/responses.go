package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ParseFrame extracts the command or status code and data from a frame.
// Validates frame structure, length, and checksum.
//
// Frame structure:
//
//	[SOP][CMD/STATUS][LEN_L][LEN_H][DATA...][CHECKSUM_L][CHECKSUM_H][EOP]
//
// Returns the code, data payload, and any validation error. A checksum
// failure is reported as a *ProtocolError with ErrChecksum so that an agent
// can answer it.
func ParseFrame(frame []byte) (code byte, data []byte, err error) {
	if len(frame) < MinFrameSize {
		return 0, nil, fmt.Errorf("%w: frame too short: got %d bytes, minimum is %d", ErrMalformedFrame, len(frame), MinFrameSize)
	}

	if frame[0] != StartOfPacket {
		return 0, nil, fmt.Errorf("%w: invalid start of packet: got 0x%02X, expected 0x%02X", ErrMalformedFrame, frame[0], StartOfPacket)
	}

	if frame[len(frame)-1] != EndOfPacket {
		return 0, nil, fmt.Errorf("%w: invalid end of packet: got 0x%02X, expected 0x%02X", ErrMalformedFrame, frame[len(frame)-1], EndOfPacket)
	}

	code = frame[1]
	dataLen := binary.LittleEndian.Uint16(frame[2:4])

	expectedLen := MinFrameSize + int(dataLen)
	if len(frame) != expectedLen {
		return 0, nil, fmt.Errorf("%w: frame length mismatch: got %d bytes, expected %d (MinFrameSize=%d + dataLen=%d)",
			ErrMalformedFrame, len(frame), expectedLen, MinFrameSize, dataLen)
	}

	// Verify checksum
	checksumExpected := binary.LittleEndian.Uint16(frame[len(frame)-3 : len(frame)-1])
	checksumActual := calculatePacketChecksum(frame[1 : len(frame)-3])

	if checksumExpected != checksumActual {
		return code, nil, fmt.Errorf("checksum 0x%04X, frame carries 0x%04X: %w",
			checksumActual, checksumExpected, &ProtocolError{Operation: CommandName(code), StatusCode: ErrChecksum})
	}

	// Extract data if present
	if dataLen > 0 {
		data = frame[HeaderSize : HeaderSize+int(dataLen)]
	}

	return code, data, nil
}

// ReadFrame reads one complete frame from r. It validates the start marker
// and the length field but leaves the checksum to ParseFrame.
func ReadFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	if header[0] != StartOfPacket {
		return nil, fmt.Errorf("%w: invalid start of packet: got 0x%02X, expected 0x%02X", ErrMalformedFrame, header[0], StartOfPacket)
	}

	dataLen := int(binary.LittleEndian.Uint16(header[2:4]))
	if dataLen > MaxDataSize {
		return nil, fmt.Errorf("%w: data length %d exceeds maximum %d bytes", ErrMalformedFrame, dataLen, MaxDataSize)
	}

	frame := make([]byte, MinFrameSize+dataLen)
	copy(frame, header)
	if _, err := io.ReadFull(r, frame[HeaderSize:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return frame, nil
}

// BuildIdentifyResponse encodes the data of an Identify response.
//
// Data format:
//
//	[FLASH_SIZE(4)][PAGE_SIZE(2)][NAME...]
func BuildIdentifyResponse(info *DeviceInfo) ([]byte, error) {
	if len(info.Name) == 0 || len(info.Name) > MaxDataSize-IdentifyResponseMinSize {
		return nil, fmt.Errorf("invalid part name length %d", len(info.Name))
	}
	data := make([]byte, 0, IdentifyResponseMinSize+len(info.Name))
	data = binary.LittleEndian.AppendUint32(data, info.FlashSize)
	data = binary.LittleEndian.AppendUint16(data, info.PageSize)
	return append(data, info.Name...), nil
}

// ParseIdentifyResponse parses the Identify command response.
func ParseIdentifyResponse(data []byte) (*DeviceInfo, error) {
	if len(data) <= IdentifyResponseMinSize {
		return nil, fmt.Errorf("invalid data length for Identify response: got %d bytes, expected more than %d",
			len(data), IdentifyResponseMinSize)
	}

	return &DeviceInfo{
		FlashSize: binary.LittleEndian.Uint32(data[0:4]),
		PageSize:  binary.LittleEndian.Uint16(data[4:6]),
		Name:      string(data[6:]),
	}, nil
}

// ParseByteReadResponse parses the Byte Read command response.
func ParseByteReadResponse(data []byte) (byte, error) {
	if len(data) != ByteReadResponseSize {
		return 0, fmt.Errorf("invalid data length for Byte Read response: got %d bytes, expected %d",
			len(data), ByteReadResponseSize)
	}
	return data[0], nil
}

// ParseReadResponse checks the Read command response against the requested
// length.
func ParseReadResponse(data []byte, n int) ([]byte, error) {
	if len(data) != n {
		return nil, fmt.Errorf("invalid data length for Read response: got %d bytes, expected %d", len(data), n)
	}
	return data, nil
}
