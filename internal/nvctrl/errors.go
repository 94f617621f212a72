package nvctrl

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrNotPresent = errors.New("NV-CONTROL extension not present")

// ProtocolError is an error reply, or a malformed reply, for one NV-CONTROL request.
type ProtocolError struct {
	Op        string
	Attribute string
	// Code is the X error code, zero when the reply was malformed.
	Code   byte
	Detail string
}

func (e *ProtocolError) Error() string {
	msg := "nv-control " + e.Op
	if e.Attribute != "" {
		msg += "(" + e.Attribute + ")"
	}
	if e.Code != 0 {
		msg += ": " + errorCodeName(e.Code)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func errorCodeName(code byte) string {
	switch code {
	case 2:
		return "BadValue"
	case 8:
		return "BadMatch"
	case 11:
		return "BadAlloc"
	default:
		return "error code " + strconv.Itoa(int(code))
	}
}

func attributeName(reqType byte, attr uint32) string {
	var names map[uint32]string
	switch reqType {
	case reqQueryExtension, reqQueryTargetCount:
		return ""
	case reqQueryBinaryData:
		names = binaryAttributeNames
	case reqQueryStringAttribute, reqSetStringAttribute:
		names = stringAttributeNames
	case reqStringOperation:
		names = stringOperationNames
	default:
		names = intAttributeNames
	}
	if name, ok := names[attr]; ok {
		return name
	}
	return fmt.Sprintf("attribute %d", attr)
}
