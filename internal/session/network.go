package session

import "sync"

// NetworkModeState is a snapshot of the network store.
// ActiveMode == ModeUploaded implies Uploaded != nil.
type NetworkModeState struct {
	ActiveMode Mode     `json:"active_mode"`
	Uploaded   *Dataset `json:"-"`
}

// HasUploadedNetwork reports whether an upload has been accepted.
func (s NetworkModeState) HasUploadedNetwork() bool { return s.Uploaded != nil }

// NetworkStore gates which dataset the displays read. Once an upload is
// accepted it stays selectable for the rest of the session.
type NetworkStore struct {
	mu       sync.RWMutex
	mode     Mode
	uploaded *Dataset
}

// NewNetworkStore returns a store on the original dataset with no upload.
func NewNetworkStore() *NetworkStore {
	return &NetworkStore{mode: ModeOriginal}
}

// AcceptUpload stores d, replacing any earlier upload, and switches the
// active mode to uploaded.
func (s *NetworkStore) AcceptUpload(d Dataset) NetworkModeState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.uploaded = &d
	s.mode = ModeUploaded
	return s.snapshotLocked()
}

// SetMode selects a dataset. Requests for ModeUploaded before any upload are
// ignored and leave the mode unchanged.
func (s *NetworkStore) SetMode(mode Mode) NetworkModeState {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch mode {
	case ModeOriginal:
		s.mode = ModeOriginal
	case ModeUploaded:
		if s.uploaded != nil {
			s.mode = ModeUploaded
		}
	}
	return s.snapshotLocked()
}

// Toggle flips between original and uploaded. Without an upload it is a
// no-op.
func (s *NetworkStore) Toggle() NetworkModeState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.uploaded != nil {
		if s.mode == ModeOriginal {
			s.mode = ModeUploaded
		} else {
			s.mode = ModeOriginal
		}
	}
	return s.snapshotLocked()
}

// HasUploadedNetwork reports whether an upload has been accepted.
func (s *NetworkStore) HasUploadedNetwork() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uploaded != nil
}

// ActiveMode returns the selected dataset.
func (s *NetworkStore) ActiveMode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// State returns a snapshot. The returned Dataset is a copy.
func (s *NetworkStore) State() NetworkModeState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *NetworkStore) snapshotLocked() NetworkModeState {
	st := NetworkModeState{ActiveMode: s.mode}
	if s.uploaded != nil {
		d := *s.uploaded
		st.Uploaded = &d
	}
	return st
}
