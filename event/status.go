package event

import (
	"fmt"

	hci "github.com/OueslatiGhaith/stm32wb-hci"
)

// Status is the status or reason code reported by the controller
// [Vol 2, Part D, 1.3]. Zero is success.
type Status uint8

// Codes the host is most likely to branch on.
const (
	StatusSuccess                Status = 0x00
	StatusUnknownCommand         Status = 0x01
	StatusUnknownConnectionID    Status = 0x02
	StatusHardwareFailure        Status = 0x03
	StatusMemoryCapacity         Status = 0x07
	StatusConnectionTimeout      Status = 0x08
	StatusCommandDisallowed      Status = 0x0c
	StatusUnsupportedParams      Status = 0x11
	StatusInvalidParams          Status = 0x12
	StatusRemoteUserTerminated   Status = 0x13
	StatusLocalHostTerminated    Status = 0x16
	StatusUnspecified            Status = 0x1f
	StatusControllerBusy         Status = 0x3a
	StatusUnacceptableConnParams Status = 0x3b
)

var statusNames = map[Status]string{
	0x00: "Success",
	0x01: "Unknown HCI Command",
	0x02: "Unknown Connection Identifier",
	0x03: "Hardware Failure",
	0x04: "Page Timeout",
	0x05: "Authentication Failure",
	0x06: "PIN or Key Missing",
	0x07: "Memory Capacity Exceeded",
	0x08: "Connection Timeout",
	0x09: "Connection Limit Exceeded",
	0x0a: "Synchronous Connection Limit To A Device Exceeded",
	0x0b: "Connection Already Exists",
	0x0c: "Command Disallowed",
	0x0d: "Connection Rejected due to Limited Resources",
	0x0e: "Connection Rejected Due To Security Reasons",
	0x0f: "Connection Rejected due to Unacceptable BD_ADDR",
	0x10: "Connection Accept Timeout Exceeded",
	0x11: "Unsupported Feature or Parameter Value",
	0x12: "Invalid HCI Command Parameters",
	0x13: "Remote User Terminated Connection",
	0x14: "Remote Device Terminated Connection due to Low Resources",
	0x15: "Remote Device Terminated Connection due to Power Off",
	0x16: "Connection Terminated By Local Host",
	0x17: "Repeated Attempts",
	0x18: "Pairing Not Allowed",
	0x19: "Unknown LMP PDU",
	0x1a: "Unsupported Remote Feature",
	0x1e: "Invalid LL Parameters",
	0x1f: "Unspecified Error",
	0x20: "Unsupported LL Parameter Value",
	0x21: "Role Change Not Allowed",
	0x22: "LL Response Timeout",
	0x23: "LL Procedure Collision",
	0x24: "LMP PDU Not Allowed",
	0x25: "Encryption Mode Not Acceptable",
	0x26: "Link Key cannot be Changed",
	0x28: "Instant Passed",
	0x29: "Pairing With Unit Key Not Supported",
	0x2a: "Different Transaction Collision",
	0x2f: "Insufficient Security",
	0x30: "Parameter Out Of Mandatory Range",
	0x3a: "Controller Busy",
	0x3b: "Unacceptable Connection Parameters",
	0x3c: "Advertising Timeout",
	0x3d: "Connection Terminated due to MIC Failure",
	0x3e: "Connection Failed to be Established",
	0x41: "Command Disallowed: Type 0 Submap Not Defined",
	0x42: "Unknown Advertising Identifier",
	0x43: "Limit Reached",
	0x44: "Operation Cancelled by Host",
	0x45: "Packet Too Long",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Status(0x%02x)", uint8(s))
}

// Error lets a status be compared with errors.Is against a StatusError.
func (s Status) Error() string { return s.String() }

// StatusError is a non-zero status returned for a command.
type StatusError struct {
	Opcode hci.Opcode
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("command %v failed: %v (0x%02x)", e.Opcode, e.Status, uint8(e.Status))
}

func (e *StatusError) Unwrap() error { return e.Status }

func statusErr(op hci.Opcode, s Status) error {
	if s == StatusSuccess {
		return nil
	}
	return &StatusError{Opcode: op, Status: s}
}
