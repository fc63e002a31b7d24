package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"nightgate/internal/domain/scan"
	"nightgate/internal/domain/ticket"
	"nightgate/internal/domain/vip"
	"nightgate/internal/infra"
	"nightgate/internal/infra/db"
	"nightgate/internal/pkg/clock"
	"nightgate/internal/pkg/errs"
	"nightgate/internal/pkg/qrtoken"
	"nightgate/internal/usecase/queries"
	"nightgate/internal/usecase/shared"
	"nightgate/internal/worker/audit"

	"github.com/google/uuid"
)

var (
	ErrInvalidScanMethod = errs.New("invalid scan method")
	ErrStorageFailure    = errs.New("storage operation failed")
)

type VerifyScanParams struct {
	// Credential is whatever the device captured: a ticket id, a raw
	// credential token (manual entry), or a signed QR payload.
	Credential string
	Method     scan.Method
	DeviceID   string
	// EventID, when set, pins the gate to one event.
	EventID *uuid.UUID
}

type VerifyScanResult struct {
	scan.Result
	// TicketID is set whenever the credential resolved.
	TicketID *uuid.UUID
	// ScannedAt is the authoritative admission time recorded by the store.
	// On already_scanned rejections it is the earlier winning scan's time,
	// which offline reconciliation compares against to detect conflicts.
	ScannedAt *time.Time
}

type GuestPassCheckInParams struct {
	Credential string
	Method     scan.Method
	DeviceID   string
	EventID    *uuid.UUID
}

type GuestPassCheckInResult struct {
	scan.Result
	PassID      *uuid.UUID
	CheckedInAt *time.Time
}

type TicketStore interface {
	FindByToken(ctx context.Context, dbtx db.DBTX, token string) (*queries.TicketView, error)
	FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*queries.TicketView, error)
	ClaimAdmission(ctx context.Context, dbtx db.DBTX, id uuid.UUID, at time.Time) (bool, error)
}

type GuestPassStore interface {
	FindGuestPassByToken(ctx context.Context, dbtx db.DBTX, token string) (*queries.GuestPassView, error)
	FindGuestPassByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*queries.GuestPassView, error)
	ClaimGuestCheckIn(ctx context.Context, dbtx db.DBTX, id uuid.UUID, at time.Time) (bool, error)
	MarkReservationCheckedIn(ctx context.Context, dbtx db.DBTX, id uuid.UUID) error
}

type ScanCommands interface {
	// Verify decides accept/reject/re-entry for a presented credential and
	// consumes at most one admission, atomically. It never returns an error
	// for a business rejection; errors mean the store itself failed.
	Verify(ctx context.Context, params VerifyScanParams) (*VerifyScanResult, error)
	CheckInGuestPass(ctx context.Context, params GuestPassCheckInParams) (*GuestPassCheckInResult, error)
}

type scanUseCaseImpl struct {
	tickets TicketStore
	passes  GuestPassStore
	uow     shared.UnitOfWork
	signer  *qrtoken.Signer
	auditor audit.Emitter
	clock   clock.Clock
}

func NewScanUseCase(
	tickets TicketStore,
	passes GuestPassStore,
	uow shared.UnitOfWork,
	signer *qrtoken.Signer,
	auditor audit.Emitter,
	clk clock.Clock,
) ScanCommands {
	return &scanUseCaseImpl{
		tickets: tickets,
		passes:  passes,
		uow:     uow,
		signer:  signer,
		auditor: auditor,
		clock:   clk,
	}
}

func (s *scanUseCaseImpl) Verify(ctx context.Context, params VerifyScanParams) (*VerifyScanResult, error) {
	if !params.Method.IsValid() {
		return nil, ErrInvalidScanMethod
	}

	now := s.clock.Now()

	token, reason := s.resolveCredentialToken(params)
	if reason != scan.ReasonNone {
		return s.finishTicketScan(params, now, &VerifyScanResult{Result: scan.Reject(reason)}), nil
	}

	var result *VerifyScanResult
	err := s.uow.WithDB(ctx, func(ctx context.Context, dbtx db.DBTX) error {
		var err error
		result, err = s.verifyResolved(ctx, dbtx, params, token, now)
		return err
	})
	if err != nil {
		return nil, errs.Mark(err, ErrStorageFailure)
	}

	return s.finishTicketScan(params, now, result), nil
}

// resolveCredentialToken decides what to look the credential up by. QR scans
// must carry a valid signature; an unsigned or tampered payload never reaches
// the store.
func (s *scanUseCaseImpl) resolveCredentialToken(params VerifyScanParams) (string, scan.Reason) {
	if params.Credential == "" {
		return "", scan.ReasonInvalidFormat
	}

	if params.Method == scan.MethodQR {
		token, err := s.signer.Verify(params.Credential)
		switch {
		case err == nil:
			return token, scan.ReasonNone
		case errors.Is(err, qrtoken.ErrUnsigned):
			return "", scan.ReasonUnsignedQR
		case errors.Is(err, qrtoken.ErrInvalidSignature):
			return "", scan.ReasonInvalidSignature
		default:
			return "", scan.ReasonInvalidFormat
		}
	}

	return params.Credential, scan.ReasonNone
}

func (s *scanUseCaseImpl) verifyResolved(ctx context.Context, dbtx db.DBTX, params VerifyScanParams, token string, now time.Time) (*VerifyScanResult, error) {
	view, err := s.lookupTicket(ctx, dbtx, token)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return &VerifyScanResult{Result: scan.Reject(scan.ReasonNotFound)}, nil
		}
		return nil, err
	}

	result := &VerifyScanResult{TicketID: &view.ID, ScannedAt: view.ScannedAt}

	if params.EventID != nil && *params.EventID != view.EventID {
		result.Result = scan.Reject(scan.ReasonWrongEvent)
		return result, nil
	}

	status := ticket.Status(view.Status)
	if !status.IsActive() {
		// Cancelled, refunded, and voided tickets are no longer credentials.
		result.Result = scan.Reject(scan.ReasonNotFound)
		return result, nil
	}

	if status == ticket.StatusScanned {
		result.Result = s.afterFirstScan(view)
		return result, nil
	}

	claimed, err := s.tickets.ClaimAdmission(ctx, dbtx, view.ID, now)
	if err != nil {
		return nil, err
	}

	if claimed {
		result.Result = scan.Accept()
		scanned := now
		result.ScannedAt = &scanned
		s.checkInLinkedReservation(ctx, dbtx, view)
		return result, nil
	}

	// Lost the race: some other device won issued→scanned between our read
	// and the conditional update. Re-read for the winner's timestamp.
	if fresh, ferr := s.tickets.FindByID(ctx, dbtx, view.ID); ferr == nil {
		result.ScannedAt = fresh.ScannedAt
		view = fresh
	}
	result.Result = s.afterFirstScan(view)
	return result, nil
}

// afterFirstScan decides what a scan of an already-consumed ticket means:
// VIP-linked holders with a live reservation re-enter; everyone else is
// turned away.
func (s *scanUseCaseImpl) afterFirstScan(view *queries.TicketView) scan.Result {
	if view.VIPReservationID != nil && view.VIPReservationStatus != nil {
		if vip.ReservationStatus(*view.VIPReservationStatus).AllowsReEntry() {
			return scan.AcceptReEntry()
		}
	}
	return scan.Reject(scan.ReasonAlreadyScanned)
}

// checkInLinkedReservation flips the linked reservation to checked_in on the
// purchaser's first admission. Best-effort: a failure here must not undo an
// admission that already happened.
func (s *scanUseCaseImpl) checkInLinkedReservation(ctx context.Context, dbtx db.DBTX, view *queries.TicketView) {
	if view.VIPReservationID == nil {
		return
	}
	if err := s.passes.MarkReservationCheckedIn(ctx, dbtx, *view.VIPReservationID); err != nil {
		slog.Warn("failed to mark reservation checked in",
			"reservation_id", view.VIPReservationID.String(),
			"error", err.Error())
	}
}

func (s *scanUseCaseImpl) lookupTicket(ctx context.Context, dbtx db.DBTX, token string) (*queries.TicketView, error) {
	if id, err := uuid.Parse(token); err == nil {
		return s.tickets.FindByID(ctx, dbtx, id)
	}
	return s.tickets.FindByToken(ctx, dbtx, token)
}

func (s *scanUseCaseImpl) CheckInGuestPass(ctx context.Context, params GuestPassCheckInParams) (*GuestPassCheckInResult, error) {
	if !params.Method.IsValid() {
		return nil, ErrInvalidScanMethod
	}

	now := s.clock.Now()

	token := params.Credential
	if params.Method == scan.MethodQR {
		verified, err := s.signer.Verify(params.Credential)
		if err != nil {
			reason := scan.ReasonInvalidFormat
			switch {
			case errors.Is(err, qrtoken.ErrUnsigned):
				reason = scan.ReasonUnsignedQR
			case errors.Is(err, qrtoken.ErrInvalidSignature):
				reason = scan.ReasonInvalidSignature
			}
			return s.finishGuestScan(params, now, &GuestPassCheckInResult{Result: scan.Reject(reason)}), nil
		}
		token = verified
	}

	var result *GuestPassCheckInResult
	err := s.uow.WithDB(ctx, func(ctx context.Context, dbtx db.DBTX) error {
		var err error
		result, err = s.checkInResolved(ctx, dbtx, params, token, now)
		return err
	})
	if err != nil {
		return nil, errs.Mark(err, ErrStorageFailure)
	}

	return s.finishGuestScan(params, now, result), nil
}

func (s *scanUseCaseImpl) checkInResolved(ctx context.Context, dbtx db.DBTX, params GuestPassCheckInParams, token string, now time.Time) (*GuestPassCheckInResult, error) {
	view, err := s.lookupGuestPass(ctx, dbtx, token)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return &GuestPassCheckInResult{Result: scan.Reject(scan.ReasonNotFound)}, nil
		}
		return nil, err
	}

	result := &GuestPassCheckInResult{PassID: &view.ID, CheckedInAt: view.CheckedInAt}

	if params.EventID != nil && *params.EventID != view.EventID {
		result.Result = scan.Reject(scan.ReasonWrongEvent)
		return result, nil
	}

	if !vip.ReservationStatus(view.ReservationStatus).AllowsReEntry() {
		result.Result = scan.Reject(scan.ReasonNotFound)
		return result, nil
	}

	claimed, err := s.passes.ClaimGuestCheckIn(ctx, dbtx, view.ID, now)
	if err != nil {
		return nil, err
	}

	if claimed {
		result.Result = scan.Accept()
		checked := now
		result.CheckedInAt = &checked
		return result, nil
	}

	// Guest passes never expire re-entry for the event duration.
	result.Result = scan.AcceptReEntry()
	return result, nil
}

func (s *scanUseCaseImpl) lookupGuestPass(ctx context.Context, dbtx db.DBTX, token string) (*queries.GuestPassView, error) {
	if id, err := uuid.Parse(token); err == nil {
		return s.passes.FindGuestPassByID(ctx, dbtx, id)
	}
	return s.passes.FindGuestPassByToken(ctx, dbtx, token)
}

func (s *scanUseCaseImpl) finishTicketScan(params VerifyScanParams, at time.Time, result *VerifyScanResult) *VerifyScanResult {
	s.auditor.Emit(audit.Event{
		EventID:     params.EventID,
		DeviceID:    params.DeviceID,
		Method:      params.Method.String(),
		InputDigest: audit.DigestInput(params.Credential),
		Accepted:    result.Accepted,
		Reason:      result.Reason.String(),
		ReEntry:     result.ReEntry,
		ScannedAt:   at,
	})
	return result
}

func (s *scanUseCaseImpl) finishGuestScan(params GuestPassCheckInParams, at time.Time, result *GuestPassCheckInResult) *GuestPassCheckInResult {
	s.auditor.Emit(audit.Event{
		EventID:     params.EventID,
		DeviceID:    params.DeviceID,
		Method:      params.Method.String(),
		InputDigest: audit.DigestInput(params.Credential),
		Accepted:    result.Accepted,
		Reason:      result.Reason.String(),
		ReEntry:     result.ReEntry,
		ScannedAt:   at,
	})
	return result
}
