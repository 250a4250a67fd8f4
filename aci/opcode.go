// Package aci holds the ST STM32WB vendor specific extensions to HCI (the
// ACI): L2CAP and extended advertising commands, and the vendor event table.
//
// Commands are plain parameter structures implementing hci.Command or
// hci.VariableLengthCommand; the L2Cap and Gap wrappers send them on any
// hci.Controller. Decode turns a raw event packet into either a standard
// event or one of the vendor events defined here.
package aci

import hci "github.com/OueslatiGhaith/stm32wb-hci"

func vendorOpcode(ocf uint16) hci.Opcode { return hci.NewOpcode(hci.OgfVendor, ocf) }

// GAP extended advertising
var (
	OpcodeGapAdvSetConfiguration    = vendorOpcode(0x0ab)
	OpcodeGapAdvSetEnable           = vendorOpcode(0x0ac)
	OpcodeGapAdvSetAdvertisingData  = vendorOpcode(0x0ad)
	OpcodeGapAdvSetScanResponseData = vendorOpcode(0x0ae)
	OpcodeGapAdvRemoveSet           = vendorOpcode(0x0af)
	OpcodeGapAdvClearSets           = vendorOpcode(0x0b0)
)

// L2CAP
var (
	OpcodeL2CapConnParamUpdateReq  = vendorOpcode(0x181)
	OpcodeL2CapConnParamUpdateResp = vendorOpcode(0x182)
	OpcodeL2CapCocConnect          = vendorOpcode(0x188)
	OpcodeL2CapCocConnectConfirm   = vendorOpcode(0x189)
	OpcodeL2CapCocReconfig         = vendorOpcode(0x18a)
	OpcodeL2CapCocReconfigConfirm  = vendorOpcode(0x18b)
	OpcodeL2CapCocDisconnect       = vendorOpcode(0x18c)
	OpcodeL2CapCocFlowControl      = vendorOpcode(0x18d)
	OpcodeL2CapCocTxData           = vendorOpcode(0x18e)
)

var opcodeNames = map[hci.Opcode]string{
	OpcodeGapAdvSetConfiguration:    "ACI_GAP_ADV_SET_CONFIGURATION",
	OpcodeGapAdvSetEnable:           "ACI_GAP_ADV_SET_ENABLE",
	OpcodeGapAdvSetAdvertisingData:  "ACI_GAP_ADV_SET_ADV_DATA",
	OpcodeGapAdvSetScanResponseData: "ACI_GAP_ADV_SET_SCAN_RESP_DATA",
	OpcodeGapAdvRemoveSet:           "ACI_GAP_ADV_REMOVE_SET",
	OpcodeGapAdvClearSets:           "ACI_GAP_ADV_CLEAR_SETS",
	OpcodeL2CapConnParamUpdateReq:   "ACI_L2CAP_CONNECTION_PARAMETER_UPDATE_REQ",
	OpcodeL2CapConnParamUpdateResp:  "ACI_L2CAP_CONNECTION_PARAMETER_UPDATE_RESP",
	OpcodeL2CapCocConnect:           "ACI_L2CAP_COC_CONNECT",
	OpcodeL2CapCocConnectConfirm:    "ACI_L2CAP_COC_CONNECT_CONFIRM",
	OpcodeL2CapCocReconfig:          "ACI_L2CAP_COC_RECONF",
	OpcodeL2CapCocReconfigConfirm:   "ACI_L2CAP_COC_RECONF_CONFIRM",
	OpcodeL2CapCocDisconnect:        "ACI_L2CAP_COC_DISCONNECT",
	OpcodeL2CapCocFlowControl:       "ACI_L2CAP_COC_FLOW_CONTROL",
	OpcodeL2CapCocTxData:            "ACI_L2CAP_COC_TX_DATA",
}

// OpcodeName returns the ST name of a vendor opcode, or op.String() for
// opcodes not defined here.
func OpcodeName(op hci.Opcode) string {
	if n, ok := opcodeNames[op]; ok {
		return n
	}
	return op.String()
}
