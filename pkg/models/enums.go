package models

type MeterType string

const (
	MeterTypeMain    MeterType = "MAIN"
	MeterTypeSub     MeterType = "SUB"
	MeterTypeVirtual MeterType = "VIRTUAL"
)

var MeterTypes = []string{string(MeterTypeMain), string(MeterTypeSub), string(MeterTypeVirtual)}

type PODType string

const (
	PODTypeConsumer PODType = "CONSUMER"
	PODTypeProducer PODType = "PRODUCER"
	PODTypeProsumer PODType = "PROSUMER"
)

var PODTypes = []string{string(PODTypeConsumer), string(PODTypeProducer), string(PODTypeProsumer)}

type AssetType string

const (
	AssetTypeBESS      AssetType = "BESS"
	AssetTypeELY       AssetType = "ELY"
	AssetTypeLoad      AssetType = "LOAD"
	AssetTypeFlexLoad  AssetType = "FLEXLOAD"
	AssetTypePVPP      AssetType = "PVPP"
	AssetTypeWPP       AssetType = "WPP"
	AssetTypeHydro     AssetType = "HYDRO"
	AssetTypeEVStation AssetType = "EVSTATION"
	AssetTypeOther     AssetType = "OTHER"
)

var AssetTypes = []string{
	string(AssetTypeBESS), string(AssetTypeELY), string(AssetTypeLoad),
	string(AssetTypeFlexLoad), string(AssetTypePVPP), string(AssetTypeWPP),
	string(AssetTypeHydro), string(AssetTypeEVStation), string(AssetTypeOther),
}

type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
	RunStatusCancelled RunStatus = "CANCELLED"
)

var RunStatuses = []string{
	string(RunStatusRunning), string(RunStatusCompleted),
	string(RunStatusFailed), string(RunStatusCancelled),
}

// IsTerminal reports whether no transition may leave s.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed || s == RunStatusCancelled
}

// CanTransition encodes the run state machine: RUNNING is the only state
// with outgoing edges and every edge ends in a terminal state.
func (s RunStatus) CanTransition(to RunStatus) bool {
	return s == RunStatusRunning && to.IsTerminal()
}
