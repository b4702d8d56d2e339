package modules

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/CyCoreSystems/ari/v5"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"lineblocs.com/confbridge/logger"
	"lineblocs.com/confbridge/types"
	"lineblocs.com/confbridge/ws"
)

// RecordingDriver owns the live recording of one conference bridge.
// recordingEnabled is sticky for the bridge's occupancy epoch; Toggle cycles
// enable, pause, resume.
type RecordingDriver struct {
	bridge   *types.ConfBridge
	producer *kafka.Producer
	feed     *ws.Feed

	mu     sync.Mutex
	handle *ari.LiveRecordingHandle
}

type recordingEvent struct {
	Name   string `json:"name"`
	Room   string `json:"room"`
	Status string `json:"status"`
}

func NewRecordingDriver(bridge *types.ConfBridge, producer *kafka.Producer, feed *ws.Feed) *RecordingDriver {
	value := RecordingDriver{
		bridge:   bridge,
		producer: producer,
		feed:     feed}
	return &value
}

// Toggle advances the recording lifecycle: not recording starts it, live
// recording pauses it, paused recording resumes it.
func (r *RecordingDriver) Toggle() {
	enabled, paused := r.bridge.RecordingState()
	if !enabled {
		err := r.Enable()
		if err != nil {
			logger.Log(logrus.ErrorLevel, "failed to start recording: "+err.Error())
		}
	} else if !paused {
		r.Pause()
	} else {
		r.Resume()
	}
}

// Enable starts a fresh named recording of the bridge and announces it.
func (r *RecordingDriver) Enable() error {
	bridge := r.bridge
	uniq, err := uuid.NewUUID()
	if err != nil {
		return eris.Wrap(err, "failed to create recording name")
	}
	name := "confbridge-" + uniq.String()

	opts := &ari.RecordingOptions{
		Format:    "wav",
		Terminate: "none"}
	handle, err := bridge.Bridge.Record(name, opts)
	if err != nil {
		return eris.Wrap(err, "failed to record bridge")
	}

	r.mu.Lock()
	r.handle = handle
	r.mu.Unlock()
	bridge.SetCurrentRecording(name)
	bridge.SetRecordingState(true, false)

	_, err = PlayToBridge(bridge.Bridge, bridge.Settings.RecordingSound)
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to play recording sound: "+err.Error())
	}
	r.publish(name, "started")
	r.feed.Broadcast(bridge.Id, "record-start", "")
	return nil
}

// AnnounceTo tells a newly joined channel the conference is being recorded.
func (r *RecordingDriver) AnnounceTo(session *types.Session) {
	_, err := PlayToChannel(session.Channel, r.bridge.Settings.RecordingSound)
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to announce recording: "+err.Error())
	}
}

func (r *RecordingDriver) Pause() {
	r.mu.Lock()
	handle := r.handle
	r.mu.Unlock()
	if handle == nil {
		return
	}
	err := handle.Pause()
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to pause recording: "+err.Error())
		return
	}
	r.bridge.SetRecordingState(true, true)
	logger.Log(logrus.DebugLevel, "recording paused")
	r.feed.Broadcast(r.bridge.Id, "record-pause", "")
}

func (r *RecordingDriver) Resume() {
	r.mu.Lock()
	handle := r.handle
	r.mu.Unlock()
	if handle == nil {
		return
	}
	err := handle.Resume()
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to resume recording: "+err.Error())
		return
	}
	r.bridge.SetRecordingState(true, false)
	logger.Log(logrus.DebugLevel, "recording resumed")
	r.feed.Broadcast(r.bridge.Id, "record-resume", "")
}

// Stop finalizes the current recording, if any, and notifies downstream
// services that it is ready for processing.
func (r *RecordingDriver) Stop() {
	r.mu.Lock()
	handle := r.handle
	r.handle = nil
	r.mu.Unlock()
	if handle == nil {
		return
	}
	err := handle.Stop()
	if err != nil {
		logger.Log(logrus.ErrorLevel, "failed to stop recording: "+err.Error())
	}
	r.publish(r.bridge.CurrentRecording(), "completed")
}

func (r *RecordingDriver) publish(name string, status string) {
	if r.producer == nil {
		return
	}
	topic := os.Getenv("KAFKA_RECORDINGS_TOPIC")
	evt := recordingEvent{
		Name:   name,
		Room:   r.bridge.Id,
		Status: status}
	body, err := json.Marshal(&evt)
	if err != nil {
		logger.Log(logrus.ErrorLevel, "error marshalling recording event: "+err.Error())
		return
	}
	err = r.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          body},
		nil, // delivery channel
	)
	if err != nil {
		logger.Log(logrus.ErrorLevel, "error producing recording event: "+err.Error())
	}
}
