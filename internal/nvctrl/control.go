package nvctrl

import (
	"fmt"
)

// Control is the display configuration surface of one X screen driven by one GPU.
type Control struct {
	client *Client
	screen int
	gpu    int
}

func NewControl(client *Client, screen, gpu int) *Control {
	return &Control{
		client: client,
		screen: screen,
		gpu:    gpu,
	}
}

// CheckVersion rejects extension versions that swap request arguments.
func (c *Control) CheckVersion() (major, minor uint16, err error) {
	major, minor, err = c.client.QueryVersion()
	if err != nil {
		return 0, 0, err
	}
	if major == 1 && (minor == 8 || minor == 9) {
		return major, minor, fmt.Errorf("NV-CONTROL %d.%d is known to swap request arguments, please upgrade the driver", major, minor)
	}
	return major, minor, nil
}

func (c *Control) GPUCount() (int, error) {
	return c.client.QueryTargetCount(TargetGPU)
}

// ProbeDisplays asks the GPU to detect connected displays.
func (c *Control) ProbeDisplays() ([]string, error) {
	mask, err := c.client.QueryAttribute(GPU(c.gpu), 0, AttrProbeDisplays)
	if err != nil {
		return nil, err
	}
	return MaskNames(uint32(mask)), nil
}

func (c *Control) DisplayName(display string) (string, error) {
	mask, err := DisplayMask(display)
	if err != nil {
		return "", err
	}
	return c.client.QueryStringAttribute(GPU(c.gpu), mask, StringDisplayDeviceName)
}

func (c *Control) EDID(display string) ([]byte, error) {
	mask, err := DisplayMask(display)
	if err != nil {
		return nil, err
	}
	return c.client.QueryBinaryData(GPU(c.gpu), mask, BinaryEDID)
}

// Modelines returns the mode pool of a display. The display must be associated with the screen.
func (c *Control) Modelines(display string) ([]string, error) {
	mask, err := DisplayMask(display)
	if err != nil {
		return nil, err
	}
	data, err := c.client.QueryBinaryData(GPU(c.gpu), mask, BinaryModelines)
	if err != nil {
		return nil, err
	}
	return SplitNUL(data), nil
}

func (c *Control) BuildModePool(display string) error {
	mask, err := DisplayMask(display)
	if err != nil {
		return err
	}
	_, err = c.client.StringOperation(GPU(c.gpu), mask, OpBuildModePool, "")
	return err
}

func (c *Control) MetaModes() ([]string, error) {
	data, err := c.client.QueryBinaryData(XScreen(c.screen), 0, BinaryMetaModes)
	if err != nil {
		return nil, err
	}
	return SplitNUL(data), nil
}

func (c *Control) CurrentMetaMode() (string, error) {
	return c.client.QueryStringAttribute(XScreen(c.screen), 0, StringCurrentMetaMode)
}

// AddMetaMode submits a mode group. The driver does not return its id.
func (c *Control) AddMetaMode(metamode string) error {
	return c.setString(StringAddMetaMode, metamode)
}

func (c *Control) DeleteMetaMode(metamode string) error {
	return c.setString(StringDeleteMetaMode, metamode)
}

func (c *Control) setString(attr uint32, value string) error {
	ok, err := c.client.SetStringAttribute(c.screen, 0, attr, value)
	if err != nil {
		return err
	}
	if !ok {
		return &ProtocolError{Op: requestNames[reqSetStringAttribute], Attribute: attributeName(reqSetStringAttribute, attr), Detail: "rejected " + value}
	}
	return nil
}

func (c *Control) AssociatedDisplays() ([]string, error) {
	mask, err := c.client.QueryAttribute(XScreen(c.screen), 0, AttrAssociatedDisplayDevices)
	if err != nil {
		return nil, err
	}
	return MaskNames(uint32(mask)), nil
}

func (c *Control) SetAssociatedDisplays(displays []string) error {
	mask, err := DisplaysMask(displays)
	if err != nil {
		return err
	}
	return c.setInt(mask, AttrAssociatedDisplayDevices, int32(mask))
}

// ScalingWritable reports whether the display supports GPU scaling.
func (c *Control) ScalingWritable(display string) (bool, error) {
	mask, err := DisplayMask(display)
	if err != nil {
		return false, err
	}
	values, err := c.client.QueryValidAttributeValues(XScreen(c.screen), mask, AttrGPUScaling)
	if err != nil {
		return false, err
	}
	return values.Writable(), nil
}

func (c *Control) SetScaling(display string, target, method uint16) error {
	mask, err := DisplayMask(display)
	if err != nil {
		return err
	}
	return c.setInt(mask, AttrGPUScaling, ScalingValue(target, method))
}

func (c *Control) setInt(mask, attr uint32, value int32) error {
	ok, err := c.client.SetAttributeAndGetStatus(c.screen, mask, attr, value)
	if err != nil {
		return err
	}
	if !ok {
		return &ProtocolError{Op: requestNames[reqSetAttributeAndGetStatus], Attribute: attributeName(reqSetAttributeAndGetStatus, attr), Detail: fmt.Sprintf("rejected value %d", value)}
	}
	return nil
}
