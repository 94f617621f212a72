// Package nvctrl speaks the NV-CONTROL X extension.
package nvctrl

const ExtensionName = "NV-CONTROL"

// Request types.
const (
	reqQueryExtension            = 0
	reqQueryAttribute            = 2
	reqQueryStringAttribute      = 4
	reqQueryValidAttributeValues = 5
	reqSetStringAttribute        = 9
	reqSetAttributeAndGetStatus  = 19
	reqQueryBinaryData           = 20
	reqQueryTargetCount          = 24
	reqStringOperation           = 25
)

var requestNames = map[byte]string{
	reqQueryExtension:            "QueryExtension",
	reqQueryAttribute:            "QueryAttribute",
	reqQueryStringAttribute:      "QueryStringAttribute",
	reqQueryValidAttributeValues: "QueryValidAttributeValues",
	reqSetStringAttribute:        "SetStringAttribute",
	reqSetAttributeAndGetStatus:  "SetAttributeAndGetStatus",
	reqQueryBinaryData:           "QueryBinaryData",
	reqQueryTargetCount:          "QueryTargetCount",
	reqStringOperation:           "StringOperation",
}

type TargetType uint16

const (
	TargetXScreen TargetType = 0
	TargetGPU     TargetType = 1
)

type Target struct {
	ID   uint16
	Type TargetType
}

func XScreen(id int) Target {
	return Target{ID: uint16(id), Type: TargetXScreen}
}

func GPU(id int) Target {
	return Target{ID: uint16(id), Type: TargetGPU}
}

// Integer attributes.
const (
	AttrConnectedDisplays        uint32 = 19
	AttrEnabledDisplays          uint32 = 20
	AttrAssociatedDisplayDevices uint32 = 231
	AttrProbeDisplays            uint32 = 234
	AttrGPUScaling               uint32 = 248
)

// Binary data attributes.
const (
	BinaryEDID      uint32 = 0
	BinaryModelines uint32 = 1
	BinaryMetaModes uint32 = 2
)

// String attributes.
const (
	StringDisplayDeviceName uint32 = 4
	StringCurrentMetaMode   uint32 = 12
	StringAddMetaMode       uint32 = 13
	StringDeleteMetaMode    uint32 = 14
)

// String operations.
const (
	OpBuildModePool uint32 = 3
)

// Scaling targets and methods, combined as target<<16 | method.
const (
	ScalingTargetBestFit uint16 = 1
	ScalingTargetNative  uint16 = 2

	ScalingMethodStretched    uint16 = 1
	ScalingMethodCentered     uint16 = 2
	ScalingMethodAspectScaled uint16 = 3
)

func ScalingValue(target, method uint16) int32 {
	return int32(target)<<16 | int32(method)
}

// Permission bits of ValidValues.Permissions.
const (
	PermRead  uint32 = 1 << 0
	PermWrite uint32 = 1 << 1
)

var intAttributeNames = map[uint32]string{
	AttrConnectedDisplays:        "CONNECTED_DISPLAYS",
	AttrEnabledDisplays:          "ENABLED_DISPLAYS",
	AttrAssociatedDisplayDevices: "ASSOCIATED_DISPLAY_DEVICES",
	AttrProbeDisplays:            "PROBE_DISPLAYS",
	AttrGPUScaling:               "GPU_SCALING",
}

var binaryAttributeNames = map[uint32]string{
	BinaryEDID:      "BINARY_DATA_EDID",
	BinaryModelines: "BINARY_DATA_MODELINES",
	BinaryMetaModes: "BINARY_DATA_METAMODES",
}

var stringAttributeNames = map[uint32]string{
	StringDisplayDeviceName: "STRING_DISPLAY_DEVICE_NAME",
	StringCurrentMetaMode:   "STRING_CURRENT_METAMODE",
	StringAddMetaMode:       "STRING_ADD_METAMODE",
	StringDeleteMetaMode:    "STRING_DELETE_METAMODE",
}

var stringOperationNames = map[uint32]string{
	OpBuildModePool: "STRING_OPERATION_BUILD_MODEPOOL",
}
