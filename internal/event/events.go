package event

import (
	"image"
	"time"

	"github.com/google/uuid"
)

// Event is anything the supervisor announces to the outside world. Remote
// notifiers receive every event and decide themselves what to publish.
type Event interface {
	ID() string
	OccurredAt() time.Time
	Supervisor() string
	Message() string
	Image() image.Image
}

type BaseEvent struct {
	id         string
	occurredAt time.Time
	supervisor string
	message    string
	image      image.Image
}

func (b BaseEvent) ID() string {
	return b.id
}

func (b BaseEvent) OccurredAt() time.Time {
	return b.occurredAt
}

func (b BaseEvent) Supervisor() string {
	return b.supervisor
}

func (b BaseEvent) Message() string {
	return b.message
}

func (b BaseEvent) Image() image.Image {
	return b.image
}

func Text(supervisor string, message string) BaseEvent {
	return BaseEvent{
		id:         uuid.NewString(),
		occurredAt: time.Now(),
		supervisor: supervisor,
		message:    message,
	}
}

// WithScreenshot attaches the capture that motivated the event, so error
// notifications show what the bot was looking at.
func WithScreenshot(supervisor string, message string, img image.Image) BaseEvent {
	e := Text(supervisor, message)
	e.image = img
	return e
}

// GameLaunchedEvent fires after a successful launch and login.
type GameLaunchedEvent struct {
	BaseEvent
}

func GameLaunched(be BaseEvent) GameLaunchedEvent {
	return GameLaunchedEvent{BaseEvent: be}
}

// FarmingStartedEvent fires when the character settles on a farming spot.
type FarmingStartedEvent struct {
	BaseEvent
	SpotName string
	Level    int
}

func FarmingStarted(be BaseEvent, spotName string, level int) FarmingStartedEvent {
	return FarmingStartedEvent{BaseEvent: be, SpotName: spotName, Level: level}
}

// SpotAbandonedEvent fires when a farming session is torn down because the
// level stopped moving for too long.
type SpotAbandonedEvent struct {
	BaseEvent
	SpotName string
}

func SpotAbandoned(be BaseEvent, spotName string) SpotAbandonedEvent {
	return SpotAbandonedEvent{BaseEvent: be, SpotName: spotName}
}

// StatsDistributedEvent fires after a stat allocation round.
type StatsDistributedEvent struct {
	BaseEvent
	Level int
}

func StatsDistributed(be BaseEvent, level int) StatsDistributedEvent {
	return StatsDistributedEvent{BaseEvent: be, Level: level}
}

// ResetPerformedEvent fires after the reset command went out.
type ResetPerformedEvent struct {
	BaseEvent
	Level int
}

func ResetPerformed(be BaseEvent, level int) ResetPerformedEvent {
	return ResetPerformedEvent{BaseEvent: be, Level: level}
}

// ErrorPausedEvent fires when the supervisor backs off after a failure.
type ErrorPausedEvent struct {
	BaseEvent
	Pause time.Duration
}

func ErrorPaused(be BaseEvent, pause time.Duration) ErrorPausedEvent {
	return ErrorPausedEvent{BaseEvent: be, Pause: pause}
}
