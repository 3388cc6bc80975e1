// internal/app/features/dashboard/result.go
package dashboard

// Status is where one asynchronously fetched slice of a view stands.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Result holds one slice of view data together with its fetch status.
// Value is meaningful only when Status is StatusLoaded.
type Result[T any] struct {
	Status Status
	Value  T
	Err    error
}

func Loading[T any]() Result[T] { return Result[T]{Status: StatusLoading} }

func Loaded[T any](v T) Result[T] { return Result[T]{Status: StatusLoaded, Value: v} }

func Failed[T any](err error) Result[T] { return Result[T]{Status: StatusFailed, Err: err} }

// Settled reports whether the fetch has finished, successfully or not.
func (r Result[T]) Settled() bool {
	return r.Status == StatusLoaded || r.Status == StatusFailed
}

// Pending reports whether a fetch is in flight.
func (r Result[T]) Pending() bool { return r.Status == StatusLoading }
