package workerpool

// Job is a unit of work submitted to the pool.
//
// A Job captures whatever state it needs and is invoked exactly once,
// by exactly one worker.
type Job func()

type messageKind uint8

const (
	runJob messageKind = iota
	terminate
)

func (k messageKind) String() string {
	switch k {
	case runJob:
		return "RunJob"
	case terminate:
		return "Terminate"
	default:
		return "Unknown"
	}
}

// controlMessage is the value flowing through the dispatch channel:
// either a job to run or a request for the receiving worker to stop.
type controlMessage struct {
	kind messageKind
	job  Job
}

func newJobMessage(j Job) controlMessage { return controlMessage{kind: runJob, job: j} }

func newTerminateMessage() controlMessage { return controlMessage{kind: terminate} }
