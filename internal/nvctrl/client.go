package nvctrl

import (
	"errors"
	"log/slog"
)

// Client issues typed NV-CONTROL requests over a Transport.
type Client struct {
	transport Transport
	codec     Codec
}

func NewClient(transport Transport) *Client {
	return &Client{
		transport: transport,
		codec: Codec{
			Order: transport.Order(),
			Major: transport.Major(),
		},
	}
}

func (c *Client) roundTrip(req []byte, attr uint32) ([]byte, error) {
	slog.Debug("Sending request", "package", "nvctrl", "op", requestNames[req[1]], "attribute", attributeName(req[1], attr))

	reply, err := c.transport.RoundTrip(req)
	if err != nil {
		var perr *ProtocolError
		if errors.As(err, &perr) && perr.Attribute == "" {
			perr.Attribute = attributeName(req[1], attr)
		}
		return nil, err
	}
	return reply, nil
}

func (c *Client) QueryVersion() (major, minor uint16, err error) {
	reply, err := c.roundTrip(c.codec.QueryExtension(), 0)
	if err != nil {
		return 0, 0, err
	}
	return c.codec.DecodeVersion(reply)
}

func (c *Client) QueryTargetCount(targetType TargetType) (int, error) {
	reply, err := c.roundTrip(c.codec.QueryTargetCount(targetType), 0)
	if err != nil {
		return 0, err
	}
	count, err := c.codec.DecodeCount(reply)
	return int(count), err
}

func (c *Client) QueryAttribute(target Target, mask, attr uint32) (int32, error) {
	reply, err := c.roundTrip(c.codec.Query(reqQueryAttribute, target, mask, attr), attr)
	if err != nil {
		return 0, err
	}
	_, value, err := c.codec.DecodeAttribute(reply, attr)
	return value, err
}

// SetAttributeAndGetStatus sets an integer attribute and reports whether the driver accepted it.
func (c *Client) SetAttributeAndGetStatus(screen int, mask, attr uint32, value int32) (bool, error) {
	reply, err := c.roundTrip(c.codec.SetAttributeAndGetStatus(uint32(screen), mask, attr, value), attr)
	if err != nil {
		return false, err
	}
	flags, err := c.codec.DecodeStatus(reply, reqSetAttributeAndGetStatus, attr)
	return flags != 0, err
}

func (c *Client) QueryValidAttributeValues(target Target, mask, attr uint32) (ValidValues, error) {
	reply, err := c.roundTrip(c.codec.Query(reqQueryValidAttributeValues, target, mask, attr), attr)
	if err != nil {
		return ValidValues{}, err
	}
	return c.codec.DecodeValidValues(reply, attr)
}

func (c *Client) QueryStringAttribute(target Target, mask, attr uint32) (string, error) {
	reply, err := c.roundTrip(c.codec.Query(reqQueryStringAttribute, target, mask, attr), attr)
	if err != nil {
		return "", err
	}
	_, data, err := c.codec.DecodeData(reply, reqQueryStringAttribute, attr)
	return trimNUL(data), err
}

// SetStringAttribute sets a string attribute and reports whether the driver accepted it.
func (c *Client) SetStringAttribute(screen int, mask, attr uint32, value string) (bool, error) {
	reply, err := c.roundTrip(c.codec.SetStringAttribute(uint32(screen), mask, attr, value), attr)
	if err != nil {
		return false, err
	}
	flags, err := c.codec.DecodeStatus(reply, reqSetStringAttribute, attr)
	return flags != 0, err
}

func (c *Client) QueryBinaryData(target Target, mask, attr uint32) ([]byte, error) {
	reply, err := c.roundTrip(c.codec.Query(reqQueryBinaryData, target, mask, attr), attr)
	if err != nil {
		return nil, err
	}
	_, data, err := c.codec.DecodeData(reply, reqQueryBinaryData, attr)
	return data, err
}

func (c *Client) StringOperation(target Target, mask, op uint32, data string) (string, error) {
	reply, err := c.roundTrip(c.codec.StringOperation(target, mask, op, data), op)
	if err != nil {
		return "", err
	}
	_, out, err := c.codec.DecodeData(reply, reqStringOperation, op)
	return trimNUL(out), err
}

func trimNUL(data []byte) string {
	for i, b := range data {
		if b == 0 {
			return string(data[:i])
		}
	}
	return string(data)
}

// SplitNUL splits NUL separated strings, dropping empty ones.
func SplitNUL(data []byte) []string {
	var items []string
	start := 0
	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == 0 {
			if i > start {
				items = append(items, string(data[start:i]))
			}
			start = i + 1
		}
	}
	return items
}
