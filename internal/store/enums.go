package store

type TranscriptType string

const (
	TubeAuto   TranscriptType = "tube_auto"   // Auto generated by YouTube speech recognition.
	TubeManual TranscriptType = "tube_manual" // Added by the creator or community.
)
