package services

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"

	"brandflowAPI/internal/ledger"
	"brandflowAPI/internal/logging"
	"brandflowAPI/internal/notification"
	"brandflowAPI/internal/payment"
	"brandflowAPI/internal/profile"
	"brandflowAPI/internal/realtime"
	"brandflowAPI/internal/session"
)

const qrSize = 256

// PaymentService runs the manual upgrade flow: the user pays over UPI,
// submits the bank reference, and an admin approves or rejects it.
type PaymentService struct {
	store    realtime.Store
	ledger   ledger.Recorder
	notifier *Notifier
	payee    string
	now      func() time.Time
}

func NewPaymentService(store realtime.Store, recorder ledger.Recorder, notifier *Notifier, payee string) *PaymentService {
	return &PaymentService{
		store:    store,
		ledger:   recorder,
		notifier: notifier,
		payee:    payee,
		now:      time.Now,
	}
}

func (s *PaymentService) Plans() []payment.Plan {
	return payment.Plans()
}

// UPILink is the deep link a UPI app opens to pay for plan.
func (s *PaymentService) UPILink(plan payment.Plan) string {
	payee := strings.ReplaceAll(url.QueryEscape(s.payee), "%40", "@")
	return fmt.Sprintf("upi://pay?pa=%s&am=%d&cu=INR", payee, plan.Price)
}

// PaymentQR renders the UPI link for planName as a PNG QR code.
func (s *PaymentService) PaymentQR(planName string) ([]byte, error) {
	plan, ok := payment.FindPlan(planName)
	if !ok {
		return nil, fmt.Errorf("plan %q: %w", planName, ErrInvalidPlan)
	}

	png, err := qrcode.Encode(s.UPILink(plan), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render qr code: %w", err)
	}
	return png, nil
}

// Submit records the caller's payment claim for review. A later submission
// replaces an earlier one.
func (s *PaymentService) Submit(ctx context.Context, sess *session.Session, planName, utr string) (*payment.Pending, error) {
	plan, ok := payment.FindPlan(planName)
	if !ok {
		return nil, fmt.Errorf("plan %q: %w", planName, ErrInvalidPlan)
	}
	utr = strings.TrimSpace(utr)
	if !payment.ValidUTR(utr) {
		return nil, ErrInvalidUTR
	}

	p := &payment.Pending{
		UID:       sess.UID,
		Email:     sess.Email,
		Plan:      string(plan.Name),
		Price:     plan.Price,
		UTR:       utr,
		Timestamp: s.now().UnixMilli(),
		Status:    payment.StatusPending,
	}
	if err := s.store.Set(ctx, realtime.PendingPaymentPath(sess.UID), p); err != nil {
		return nil, fmt.Errorf("failed to submit payment: %w", err)
	}

	logging.FromContext(ctx).WithFields(logrus.Fields{
		"uid":  sess.UID,
		"plan": p.Plan,
	}).Info("payment submitted for review")
	return p, nil
}

// Pending returns the caller's own pending payment, or nil.
func (s *PaymentService) Pending(ctx context.Context, sess *session.Session) (*payment.Pending, error) {
	return s.pending(ctx, sess.UID)
}

func (s *PaymentService) pending(ctx context.Context, uid string) (*payment.Pending, error) {
	var p *payment.Pending
	if err := s.store.Get(ctx, realtime.PendingPaymentPath(uid), &p); err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if p != nil && p.UID == "" {
		p.UID = uid
	}
	return p, nil
}

// ListPending returns every payment awaiting review, oldest first.
func (s *PaymentService) ListPending(ctx context.Context) ([]payment.Pending, error) {
	var m map[string]payment.Pending
	if err := s.store.Get(ctx, realtime.PendingPaymentsRoot, &m); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	out := make([]payment.Pending, 0, len(m))
	for uid, p := range m {
		if p.UID == "" {
			p.UID = uid
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].UID < out[j].UID
	})
	return out, nil
}

func (s *PaymentService) CountPending(ctx context.Context) (int, error) {
	list, err := s.ListPending(ctx)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

// Approve grants the requested plan for ApprovalPeriod and clears the
// pending record.
func (s *PaymentService) Approve(ctx context.Context, admin *session.Session, uid string) (*payment.DecisionResponse, error) {
	p, err := s.pending(ctx, uid)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNoPendingPayment
	}
	plan, ok := payment.FindPlan(p.Plan)
	if !ok {
		return nil, fmt.Errorf("plan %q: %w", p.Plan, ErrInvalidPlan)
	}

	expiry := s.now().Add(payment.ApprovalPeriod).UnixMilli()
	if err := s.store.Update(ctx, realtime.ProfilePath(uid), map[string]interface{}{
		"status":     string(plan.Name),
		"expiryDate": expiry,
	}); err != nil {
		return nil, fmt.Errorf("failed to activate plan: %w", err)
	}
	if err := s.store.Delete(ctx, realtime.PendingPaymentPath(uid)); err != nil {
		return nil, fmt.Errorf("failed to clear payment: %w", err)
	}

	s.audit(ctx, ledger.NewEntry(*p, payment.DecisionApproved, admin.Email, &expiry))
	s.notifier.Notify(ctx, uid, notification.PaymentApproved(plan.Name, expiry))

	return &payment.DecisionResponse{
		UID:        uid,
		Decision:   payment.DecisionApproved,
		Plan:       string(plan.Name),
		ExpiryDate: &expiry,
	}, nil
}

// Reject clears the pending record and leaves the profile untouched.
func (s *PaymentService) Reject(ctx context.Context, admin *session.Session, uid string) (*payment.DecisionResponse, error) {
	p, err := s.pending(ctx, uid)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNoPendingPayment
	}

	if err := s.store.Delete(ctx, realtime.PendingPaymentPath(uid)); err != nil {
		return nil, fmt.Errorf("failed to clear payment: %w", err)
	}

	s.audit(ctx, ledger.NewEntry(*p, payment.DecisionRejected, admin.Email, nil))
	s.notifier.Notify(ctx, uid, notification.PaymentRejected(profile.ParseStatus(p.Plan)))

	return &payment.DecisionResponse{UID: uid, Decision: payment.DecisionRejected, Plan: p.Plan}, nil
}

func (s *PaymentService) audit(ctx context.Context, e ledger.Entry) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.Record(context.WithoutCancel(ctx), e); err != nil {
		logging.FromContext(ctx).WithError(err).WithFields(logrus.Fields{
			"uid":      e.UID,
			"decision": e.Decision,
		}).Error("failed to record payment decision")
	}
}

func (s *PaymentService) Ledger(ctx context.Context, limit int) ([]ledger.Entry, error) {
	if s.ledger == nil {
		return []ledger.Entry{}, nil
	}
	entries, err := s.ledger.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	if entries == nil {
		entries = []ledger.Entry{}
	}
	return entries, nil
}
