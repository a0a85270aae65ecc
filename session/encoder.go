package session

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const recordFormatVersionCurrent = 1

func writeString(buf *bytes.Buffer, field, value string) error {
	if len(value) > 255 {
		return errors.New(field + " too long")
	}
	buf.WriteByte(byte(len(value)))
	buf.WriteString(value)
	return nil
}

func readString(reader *bytes.Reader) (string, error) {
	length, err := reader.ReadByte()
	if err != nil {
		return "", err
	}

	raw := make([]byte, length)
	if _, err := reader.Read(raw); err != nil {
		return "", err
	}
	return string(raw), nil
}

// Encode describes the encode operation and its observable behavior.
//
// Encode may return an error when input validation, dependency calls, or security checks fail.
func Encode(r *Record) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recordFormatVersionCurrent)

	if err := writeString(&buf, "principalID", r.PrincipalID); err != nil {
		return nil, err
	}
	if err := writeString(&buf, "sessionID", r.SessionID); err != nil {
		return nil, err
	}
	if err := writeString(&buf, "ip", r.IP); err != nil {
		return nil, err
	}
	if err := writeString(&buf, "cookieName", r.CookieName); err != nil {
		return nil, err
	}
	if err := writeString(&buf, "hash", r.Hash); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.BigEndian, r.LastActivity); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode describes the decode operation and its observable behavior.
//
// Decode may return an error when input validation, dependency calls, or security checks fail.
func Decode(data []byte) (*Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recordFormatVersionCurrent {
		return nil, errors.New("invalid session record version")
	}

	r := &Record{}

	if r.PrincipalID, err = readString(reader); err != nil {
		return nil, err
	}
	if r.SessionID, err = readString(reader); err != nil {
		return nil, err
	}
	if r.IP, err = readString(reader); err != nil {
		return nil, err
	}
	if r.CookieName, err = readString(reader); err != nil {
		return nil, err
	}
	if r.Hash, err = readString(reader); err != nil {
		return nil, err
	}

	if err := binary.Read(reader, binary.BigEndian, &r.LastActivity); err != nil {
		return nil, err
	}

	return r, nil
}
