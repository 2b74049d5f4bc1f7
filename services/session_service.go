package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/servhunt/digimenu/apperrors"
	"github.com/servhunt/digimenu/models"
	"github.com/servhunt/digimenu/utils"
)

const (
	// CustomerSessionTTL is how long a customer stays signed in.
	CustomerSessionTTL = 90 * 24 * time.Hour
	// AdminSessionTTL is how long an admin stays signed in.
	AdminSessionTTL = 24 * time.Hour
)

// SessionService issues and resolves opaque session tokens for both
// principal kinds, backed by the sessions table.
type SessionService struct {
	DB *gorm.DB
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{DB: db}
}

// RequestMeta is the client context captured alongside a session.
type RequestMeta struct {
	UserAgent string
	IPAddress string
}

// CreateCustomerSession purges the customer's prior sessions and issues a
// fresh 90-day token. Expired rows of any principal are swept
// opportunistically.
func (ss *SessionService) CreateCustomerSession(customerID uint, meta RequestMeta) (*models.Session, error) {
	token, err := utils.GenerateSessionToken()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to create session", err)
	}

	now := time.Now()
	session := &models.Session{
		Token:        token,
		CustomerID:   &customerID,
		UserAgent:    meta.UserAgent,
		IPAddress:    meta.IPAddress,
		ExpiresAt:    now.Add(CustomerSessionTTL),
		LastActivity: now,
	}

	err = ss.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", customerID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Create(session).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to create session", err)
	}

	ss.sweepExpired()
	return session, nil
}

// CreateAdminSession deletes every prior session for the admin so at most
// one stays active, then issues a fresh 24-hour token.
func (ss *SessionService) CreateAdminSession(adminID uint, meta RequestMeta) (*models.Session, error) {
	token, err := utils.GenerateSessionToken()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to create session", err)
	}

	now := time.Now()
	session := &models.Session{
		Token:        token,
		AdminID:      &adminID,
		UserAgent:    meta.UserAgent,
		ExpiresAt:    now.Add(AdminSessionTTL),
		LastActivity: now,
	}

	err = ss.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("admin_id = ?", adminID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Create(session).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to create session", err)
	}

	ss.sweepExpired()
	return session, nil
}

// ResolveCustomer returns the customer behind a live session token, or nil
// when the token is absent, unknown or expired. A hit bumps last_activity.
// Expiry is strict: expires_at equal to now does not resolve.
func (ss *SessionService) ResolveCustomer(token string) (*models.Customer, error) {
	if token == "" {
		return nil, nil
	}

	var session models.Session
	err := ss.DB.Where("token = ? AND customer_id IS NOT NULL AND expires_at > ?", token, time.Now()).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "session lookup failed", err)
	}

	var customer models.Customer
	if err := ss.DB.First(&customer, *session.CustomerID).Error; err != nil {
		return nil, nil
	}

	ss.touch(session.ID)
	return &customer, nil
}

// ResolveAdmin returns the admin behind a live admin session token. A
// changed user-agent is logged as a warning but never invalidates the
// session.
func (ss *SessionService) ResolveAdmin(token, currentUserAgent string) (*models.Admin, error) {
	if token == "" {
		return nil, nil
	}

	var session models.Session
	err := ss.DB.Where("token = ? AND admin_id IS NOT NULL AND expires_at > ?", token, time.Now()).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "session lookup failed", err)
	}

	if session.UserAgent != "" && currentUserAgent != "" && session.UserAgent != currentUserAgent {
		utils.ErrorLogger.Warnf("admin session user-agent changed - session: %s...", session.Token[:8])
	}

	var admin models.Admin
	if err := ss.DB.First(&admin, *session.AdminID).Error; err != nil {
		return nil, nil
	}

	ss.touch(session.ID)
	return &admin, nil
}

// DeleteCustomerSession removes the session row for a customer token.
// Missing rows are not an error; logout is idempotent.
func (ss *SessionService) DeleteCustomerSession(token string) {
	if token == "" {
		return
	}
	ss.DB.Where("token = ? AND customer_id IS NOT NULL", token).Delete(&models.Session{})
}

// DeleteAdminSession removes the session row for an admin token.
func (ss *SessionService) DeleteAdminSession(token string) {
	if token == "" {
		return
	}
	ss.DB.Where("token = ? AND admin_id IS NOT NULL", token).Delete(&models.Session{})
}

func (ss *SessionService) touch(sessionID uint) {
	ss.DB.Model(&models.Session{}).Where("id = ?", sessionID).
		Update("last_activity", time.Now())
}

func (ss *SessionService) sweepExpired() {
	ss.DB.Where("expires_at <= ?", time.Now()).Delete(&models.Session{})
}
