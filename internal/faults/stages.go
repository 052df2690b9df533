package faults

// Pipeline stage names recorded on StageError and in log fields.
const (
	StagePreflight = "preflight"
	StageDiscover  = "discover"
	StageSort      = "sort"
	StageRename    = "rename"
	StageEncode    = "encode"
	StageAssemble  = "assemble"
	StageVerify    = "verify"
)
