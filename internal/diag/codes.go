package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Subscriber declarations
	SubInfo         Code = 1000
	SubNotMethod    Code = 1001 // directive on a non-function declaration
	SubStatic       Code = 1002 // directive on a package-level function
	SubNotPublic    Code = 1003 // method name is not exported
	SubParamCount   Code = 1004 // method does not take exactly one parameter
	SubBadPayload   Code = 1005 // directive arguments cannot be decoded
	SubIndexed      Code = 1006 // method written to the index
	SubNoneFound    Code = 1007 // no annotated methods in the whole session
	SubNoReceiver   Code = 1008 // receiver base type cannot be resolved
	SubParamUntyped Code = 1009 // parameter type information is missing
	SubEmbedsMany   Code = 1010 // type embeds more than one application type

	// Reflective fallback
	FbInfo                Code = 2000
	FbClassNotPublic      Code = 2001
	FbSuperNotPublic      Code = 2002
	FbEventNotPublic      Code = 2003
	FbSuperEventNotPublic Code = 2004

	// Session state machine
	SesInfo                 Code = 3000
	SesCollectAfterFinalize Code = 3001
	SesResolveTwice         Code = 3002
	SesStructuralFault      Code = 3003
	SesEmitState            Code = 3004
	SesEmitFailed           Code = 3005

	// Directives
	DirInfo        Code = 4000
	DirUnknownName Code = 4001
	DirMalformed   Code = 4002
	DirDetached    Code = 4003 // directive comment not attached to a declaration

	// Ошибки I/O и загрузки пакетов
	IOLoadPackage   Code = 5001
	IOPackageErrors Code = 5002
	IOWriteArtifact Code = 5003

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001

	// Configuration
	CfgInfo      Code = 7000
	CfgInvalid   Code = 7001
	CfgNamespace Code = 7002 // application namespace could not be derived
)

var codeDescription = map[Code]string{
	UnknownCode:             "Unknown error",
	SubInfo:                 "Subscriber information",
	SubNotMethod:            "Subscribe directive is only valid for methods",
	SubStatic:               "Subscriber method must not be static",
	SubNotPublic:            "Subscriber method must be public",
	SubParamCount:           "Subscriber method must have exactly 1 parameter",
	SubBadPayload:           "Invalid subscribe directive arguments",
	SubIndexed:              "Subscriber indexed",
	SubNoneFound:            "No subscriber annotations found",
	SubNoReceiver:           "Subscriber receiver type cannot be resolved",
	SubParamUntyped:         "Subscriber parameter type is unknown",
	SubEmbedsMany:           "Inherited subscribers are taken from the first application embed only",
	FbInfo:                  "Reflection fallback information",
	FbClassNotPublic:        "Falling back to reflection: type is not public",
	FbSuperNotPublic:        "Falling back to reflection: embedded ancestor is not public",
	FbEventNotPublic:        "Falling back to reflection: event type is not public",
	FbSuperEventNotPublic:   "Falling back to reflection: ancestor uses a non-public event type",
	SesInfo:                 "Session information",
	SesCollectAfterFinalize: "Declarations discovered after finalization",
	SesResolveTwice:         "Resolution entered twice",
	SesStructuralFault:      "Unexpected structural failure",
	SesEmitState:            "Emission requested in an invalid state",
	SesEmitFailed:           "Artifact emission failed",
	DirInfo:                 "Directive information",
	DirUnknownName:          "Unknown directive",
	DirMalformed:            "Malformed directive",
	DirDetached:             "Directive is not attached to a declaration",
	IOLoadPackage:           "Package load error",
	IOPackageErrors:         "Package has errors",
	IOWriteArtifact:         "Artifact write error",
	ObsInfo:                 "Observability information",
	ObsTimings:              "Pipeline timings",
	CfgInfo:                 "Configuration information",
	CfgInvalid:              "Invalid configuration",
	CfgNamespace:            "Application namespace is unknown",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SUB%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("FBK%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SES%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("DIR%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("CFG%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
