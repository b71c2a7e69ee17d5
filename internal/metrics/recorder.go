package metrics

import "time"

// Stage names a timed phase of a build.
type Stage string

const (
	StageDiscover     Stage = "discover"
	StageAssemble     Stage = "assemble"
	StageBibliography Stage = "bibliography"
)

// FileOutcome classifies what happened to one source file.
type FileOutcome string

const (
	FileDocumented   FileOutcome = "documented"
	FileUndocumented FileOutcome = "undocumented"
	FileSkipped      FileOutcome = "skipped"
	FileFailed       FileOutcome = "failed"
)

// BuildOutcome is the final status of a build.
type BuildOutcome string

const (
	BuildSuccess  BuildOutcome = "success"
	BuildFailed   BuildOutcome = "failed"
	BuildCanceled BuildOutcome = "canceled"
)

// Recorder defines observability hooks for build and stage metrics.
type Recorder interface {
	ObserveStageDuration(stage Stage, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncFileOutcome(outcome FileOutcome)
	IncPagesWritten()
	SetBibliographySize(n int)
	IncBuildOutcome(outcome BuildOutcome)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(Stage, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)        {}
func (NoopRecorder) IncFileOutcome(FileOutcome)                {}
func (NoopRecorder) IncPagesWritten()                          {}
func (NoopRecorder) SetBibliographySize(int)                   {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)              {}
