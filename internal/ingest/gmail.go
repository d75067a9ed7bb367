package ingest

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/ntdat247/Autoland-Monitoring/internal/config"
	"github.com/ntdat247/Autoland-Monitoring/internal/logger"
	"github.com/ntdat247/Autoland-Monitoring/internal/pipeline"
	"github.com/ntdat247/Autoland-Monitoring/internal/storage/sqlite"
)

const gmailUser = "me"

const maxMessagesPerPoll = 50

// Service polls a Gmail mailbox for autoland report emails, runs their
// PDF attachments through the extraction pipeline and persists the
// results.
type Service struct {
	config    *config.Config
	logger    *logger.Logger
	processor *pipeline.Processor
	reports   *sqlite.ReportStore
	fleet     *sqlite.FleetStore
	gmail     *gmail.Service
}

// NewService builds the ingestion service from OAuth credential and
// token files on disk.
func NewService(ctx context.Context, cfg *config.Config, log *logger.Logger, processor *pipeline.Processor, reports *sqlite.ReportStore, fleet *sqlite.FleetStore) (*Service, error) {
	credentials, err := os.ReadFile(cfg.GmailCredentials)
	if err != nil {
		return nil, fmt.Errorf("failed to read Gmail credentials: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(credentials, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Gmail credentials: %w", err)
	}

	tokenBytes, err := os.ReadFile(cfg.GmailToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read Gmail token: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenBytes, &token); err != nil {
		return nil, fmt.Errorf("failed to parse Gmail token: %w", err)
	}

	service, err := gmail.NewService(ctx, option.WithTokenSource(oauthConfig.TokenSource(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Service{
		config:    cfg,
		logger:    log.Named("gmail-ingest"),
		processor: processor,
		reports:   reports,
		fleet:     fleet,
		gmail:     service,
	}, nil
}

// Run polls the mailbox until the context is cancelled. Errors on a
// single message are logged and skipped so one bad email never stalls
// the mailbox.
func (s *Service) Run(ctx context.Context) {
	s.logger.Info("Starting Gmail ingestion",
		logger.String("query", s.config.GmailQuery),
		logger.Duration("poll_period", s.config.GmailPollPeriod))

	ticker := time.NewTicker(s.config.GmailPollPeriod)
	defer ticker.Stop()

	s.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Stopping Gmail ingestion")
			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

// poll fetches one page of matching messages and processes the new ones.
func (s *Service) poll(ctx context.Context) {
	list, err := s.gmail.Users.Messages.List(gmailUser).
		Q(s.config.GmailQuery).
		MaxResults(maxMessagesPerPoll).
		Context(ctx).
		Do()
	if err != nil {
		s.logger.Error("Failed to list Gmail messages", logger.Error(err))
		return
	}

	for _, ref := range list.Messages {
		seen, err := s.reports.HasEmail(ref.Id)
		if err != nil {
			s.logger.Error("Failed to check email dedup", logger.String("email_id", ref.Id), logger.Error(err))
			continue
		}
		if seen {
			continue
		}

		if err := s.processMessage(ctx, ref.Id); err != nil {
			s.logger.Error("Failed to process email",
				logger.String("email_id", ref.Id), logger.Error(err))
		}
	}
}

// processMessage downloads every PDF attachment of one email and runs it
// through the pipeline.
func (s *Service) processMessage(ctx context.Context, messageID string) error {
	msg, err := s.gmail.Users.Messages.Get(gmailUser, messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to fetch message: %w", err)
	}

	subject := headerValue(msg.Payload, "Subject")
	sender := headerValue(msg.Payload, "From")
	receivedAt := time.UnixMilli(msg.InternalDate).UTC()

	attachments := collectPDFAttachments(msg.Payload)
	if len(attachments) == 0 {
		s.logger.Debug("Email has no PDF attachments", logger.String("email_id", messageID))
		return nil
	}

	for _, att := range attachments {
		if err := s.processAttachment(ctx, messageID, subject, sender, receivedAt, att); err != nil {
			s.logger.Error("Failed to process attachment",
				logger.String("email_id", messageID),
				logger.String("filename", att.filename),
				logger.Error(err))
		}
	}

	return nil
}

func (s *Service) processAttachment(ctx context.Context, messageID, subject, sender string, receivedAt time.Time, att pdfAttachment) error {
	body, err := s.gmail.Users.Messages.Attachments.Get(gmailUser, messageID, att.attachmentID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to fetch attachment: %w", err)
	}

	data, err := base64.URLEncoding.DecodeString(body.Data)
	if err != nil {
		return fmt.Errorf("failed to decode attachment: %w", err)
	}

	outcome := s.processor.Process(data)
	if !outcome.Success {
		return fmt.Errorf("pipeline failed: %s", strings.Join(outcome.Errors, "; "))
	}

	storagePath, err := ArchivePDF(s.config.StorageDir, att.filename, data, receivedAt)
	if err != nil {
		return err
	}

	status := sqlite.ExtractionStatusSuccess
	if len(outcome.Warnings) > 0 {
		status = sqlite.ExtractionStatusPartial
	}

	stored := &sqlite.StoredReport{
		Record:              *outcome.Data,
		EmailID:             &messageID,
		EmailSubject:        optional(subject),
		EmailSender:         optional(sender),
		EmailReceivedTime:   &receivedAt,
		PDFFilename:         att.filename,
		PDFStoragePath:      storagePath,
		ProcessedAt:         time.Now().UTC(),
		ExtractionStatus:    status,
		ExtractionMethod:    outcome.Method,
		ExtractionCost:      outcome.Metrics.ActualCost,
		ExtractionCostSaved: outcome.Metrics.CostSaved,
	}

	id, err := s.reports.Insert(stored)
	if errors.Is(err, sqlite.ErrDuplicateReport) {
		s.logger.Info("Skipping duplicate report",
			logger.String("report_number", outcome.Data.ReportNumber),
			logger.String("email_id", messageID))
		return nil
	}
	if err != nil {
		return err
	}

	landedAt := outcome.Data.DateUTC
	if outcome.Data.DatetimeUTC != nil {
		landedAt = *outcome.Data.DatetimeUTC
	}
	if err := s.fleet.RecordAutoland(outcome.Data.AircraftReg, landedAt, id); err != nil {
		return err
	}

	s.logger.Info("Ingested autoland report",
		logger.String("report_number", outcome.Data.ReportNumber),
		logger.String("aircraft_reg", outcome.Data.AircraftReg),
		logger.String("filename", att.filename))

	return nil
}

type pdfAttachment struct {
	filename     string
	attachmentID string
}

// collectPDFAttachments walks the MIME tree for PDF attachment parts.
func collectPDFAttachments(part *gmail.MessagePart) []pdfAttachment {
	if part == nil {
		return nil
	}

	var found []pdfAttachment
	if part.Filename != "" && strings.HasSuffix(strings.ToLower(part.Filename), ".pdf") &&
		part.Body != nil && part.Body.AttachmentId != "" {
		found = append(found, pdfAttachment{
			filename:     part.Filename,
			attachmentID: part.Body.AttachmentId,
		})
	}

	for _, child := range part.Parts {
		found = append(found, collectPDFAttachments(child)...)
	}

	return found
}

func headerValue(part *gmail.MessagePart, name string) string {
	if part == nil {
		return ""
	}
	for _, h := range part.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
