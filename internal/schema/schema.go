package schema

// SchemaVersion is bumped when any payload layout changes.
const SchemaVersion uint16 = 1

// EventType identifies the payload carried after an EventHeader.
type EventType uint16

const (
	EventUnknown EventType = iota
	EventTick
	EventFill
)

// EventHeader precedes every record in the on-disk event stream.
type EventHeader struct {
	Type    EventType
	Version uint16
	Source  uint16
	Flags   uint16
	Seq     uint64
	TsEvent int64
	TsRecv  int64
	TraceID uint64
}

// NewHeader builds a header for one event.
func NewHeader(eventType EventType, source uint16, seq uint64, tsEvent, tsRecv int64) EventHeader {
	return EventHeader{
		Type:    eventType,
		Version: SchemaVersion,
		Source:  source,
		Seq:     seq,
		TsEvent: tsEvent,
		TsRecv:  tsRecv,
	}
}
