package honeycomb

import (
	"errors"

	"github.com/honeycombio/libhoney-go/transmission"
)

// MultiSender fans each event out to several senders, so traces can go to
// honeycomb and stderr at the same time.
type MultiSender struct {
	Senders []transmission.Sender
}

// Add calls Add on every configured Sender
func (s *MultiSender) Add(ev *transmission.Event) {
	for _, tx := range s.Senders {
		tx.Add(ev)
	}
}

// Start calls Start on every configured Sender, aborting on the first error
func (s *MultiSender) Start() error {
	if len(s.Senders) == 0 {
		return errors.New("no senders configured")
	}
	for _, tx := range s.Senders {
		if err := tx.Start(); err != nil {
			return err
		}
	}
	return nil
}

// Stop calls Stop on every configured Sender, aborting on the first error
func (s *MultiSender) Stop() error {
	for _, tx := range s.Senders {
		if err := tx.Stop(); err != nil {
			return err
		}
	}
	return nil
}

// Flush calls Flush on every configured Sender, aborting on the first error
func (s *MultiSender) Flush() error {
	for _, tx := range s.Senders {
		if err := tx.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// TxResponses returns the response channel from the first Sender only
func (s *MultiSender) TxResponses() chan transmission.Response {
	return s.Senders[0].TxResponses()
}

// SendResponse calls SendResponse on every configured Sender
func (s *MultiSender) SendResponse(resp transmission.Response) bool {
	pending := false
	for _, tx := range s.Senders {
		pending = tx.SendResponse(resp) || pending
	}
	return pending
}
