package log

import (
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		logger.Log(Event{
			Timestamp: time.Now().UTC(),
			Direction: DirectionOut,
			Layer:     LayerService,
			Category:  CategoryMessage,
			Message: &MessageEvent{
				Kind:      KindAnnouncement,
				MessageID: uint16(i),
			},
		})
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Logging after close is a silent no-op
	logger.Log(Event{Category: CategoryMessage})
	if err := logger.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		_, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		count++
	}
	if count != 3 {
		t.Errorf("read %d events, want 3", count)
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				logger.Log(Event{
					Timestamp: time.Now().UTC(),
					Category:  CategoryState,
					StateChange: &StateChangeEvent{
						Entity:   StateEntityListener,
						NewState: "LISTENING",
					},
				})
			}
		}()
	}
	wg.Wait()

	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		if _, err := reader.Next(); err != nil {
			break
		}
		count++
	}
	if count != 100 {
		t.Errorf("read %d events, want 100", count)
	}
}

func TestFilteredReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.cbor")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Log(Event{
		Timestamp: time.Now().UTC(),
		Category:  CategoryMessage,
		Message:   &MessageEvent{Kind: KindAnnouncement},
	})
	logger.Log(Event{
		Timestamp: time.Now().UTC(),
		Category:  CategoryMessage,
		Message:   &MessageEvent{Kind: KindRequest},
	})
	logger.Log(Event{
		Timestamp: time.Now().UTC(),
		Category:  CategoryMessage,
		Message:   &MessageEvent{Kind: KindAnnouncement},
	})
	logger.Close()

	kind := KindAnnouncement
	reader, err := NewFilteredReader(path, Filter{Kind: &kind})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if event.Message.Kind != KindAnnouncement {
			t.Errorf("filter let through kind %v", event.Message.Kind)
		}
		count++
	}
	if count != 2 {
		t.Errorf("read %d announcements, want 2", count)
	}
}
