package services

import (
	"fmt"
	"sync"
	"time"
)

const (
	// OTPExpiry is how long a challenge stays verifiable.
	OTPExpiry = 10 * time.Minute
	// MaxOTPAttempts caps wrong-code retries per challenge.
	MaxOTPAttempts = 5
	// sweepInterval is how often expired challenges are reclaimed.
	sweepInterval = 5 * time.Minute
)

// OTPPurpose is the intent behind an OTP request.
type OTPPurpose string

const (
	PurposeLogin    OTPPurpose = "login"
	PurposeRegister OTPPurpose = "register"
)

func (p OTPPurpose) Valid() bool {
	return p == PurposeLogin || p == PurposeRegister
}

// Challenge is one pending OTP verification cycle for a phone+purpose pair.
type Challenge struct {
	Purpose        OTPPurpose
	Name           string // pending customer name, register only
	Attempts       int
	ExpiresAt      time.Time
	VerificationID string // handle issued by the SMS provider
}

// ChallengeStore keeps pending OTP challenges in process memory, at most one
// per phone+purpose. It owns a sweeper goroutine started by NewChallengeStore
// and stopped with Stop.
type ChallengeStore struct {
	mu         sync.Mutex
	challenges map[string]*Challenge
	stop       chan struct{}
	stopOnce   sync.Once
}

func NewChallengeStore() *ChallengeStore {
	s := &ChallengeStore{
		challenges: make(map[string]*Challenge),
		stop:       make(chan struct{}),
	}
	go s.sweepLoop(sweepInterval)
	return s
}

func challengeKey(phone string, purpose OTPPurpose) string {
	return fmt.Sprintf("%s_%s", phone, purpose)
}

// Put stores a fresh challenge, superseding any prior one for the same key.
func (s *ChallengeStore) Put(phone string, purpose OTPPurpose, name, verificationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[challengeKey(phone, purpose)] = &Challenge{
		Purpose:        purpose,
		Name:           name,
		Attempts:       0,
		ExpiresAt:      time.Now().Add(OTPExpiry),
		VerificationID: verificationID,
	}
}

// Get returns a copy of the live challenge, or false if none exists.
// Expired entries are treated as gone here only by the sweeper; callers
// check ExpiresAt themselves so expiry gets its own error.
func (s *ChallengeStore) Get(phone string, purpose OTPPurpose) (Challenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[challengeKey(phone, purpose)]
	if !ok {
		return Challenge{}, false
	}
	return *ch, true
}

// RecordFailure increments the attempt counter and returns attempts left.
func (s *ChallengeStore) RecordFailure(phone string, purpose OTPPurpose) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[challengeKey(phone, purpose)]
	if !ok {
		return 0
	}
	ch.Attempts++
	left := MaxOTPAttempts - ch.Attempts
	if left < 0 {
		left = 0
	}
	return left
}

// SetExpiresAt overrides the deadline of an existing challenge.
func (s *ChallengeStore) SetExpiresAt(phone string, purpose OTPPurpose, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.challenges[challengeKey(phone, purpose)]; ok {
		ch.ExpiresAt = at
	}
}

func (s *ChallengeStore) Delete(phone string, purpose OTPPurpose) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, challengeKey(phone, purpose))
}

// Len reports the number of stored challenges, expired or not.
func (s *ChallengeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.challenges)
}

// Stop cancels the sweeper. Safe to call more than once.
func (s *ChallengeStore) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *ChallengeStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweep(time.Now())
		case <-s.stop:
			return
		}
	}
}

func (s *ChallengeStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, ch := range s.challenges {
		if now.After(ch.ExpiresAt) {
			delete(s.challenges, key)
		}
	}
}
