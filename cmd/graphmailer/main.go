// Package main provides a command line tool for sending mail through the
// Microsoft Graph sendMail API. The tool authenticates with an OAuth2
// client-credentials grant (tenant ID, client ID and client secret of an
// App Registration with the Mail.Send application permission) and builds the
// sendMail request body itself, so the exact wire payload can be previewed
// with -whatif before anything is sent.
//
// Every send attempt is recorded to a dated CSV audit file in the system
// temp directory.
//
// Example usage:
//
//	graphmailer -tenantid "..." -clientid "..." -secret "..." -from "noreply@example.com" -to "user@example.com"
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"graphmailer/internal/common/logger"
	"graphmailer/internal/common/security"
	"graphmailer/internal/common/version"
	"graphmailer/internal/graphmail"
)

func main() {
	// A .env file is optional; variables already set in the environment
	// are not overridden.
	_ = godotenv.Load()

	config := parseAndConfigureFlags()

	if config.ShowVersion {
		fmt.Printf("graphmailer version %s\n", version.Get())
		return
	}

	slogger := logger.Setup(config.VerboseMode, config.LogLevel)

	if err := validateConfiguration(config); err != nil {
		logger.Error(slogger, "Configuration validation failed", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config, slogger); err != nil {
		reportSendError(slogger, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, config *Config, slogger *slog.Logger) error {
	message, err := buildMessage(config, slogger)
	if err != nil {
		return err
	}

	// Dry run: show the exact payload that would go on the wire and stop
	// before any network activity.
	if config.WhatIf {
		return printWhatIf(message, config)
	}

	tokenOpts := []graphmail.TokenProviderOption{graphmail.WithTokenLogger(slogger)}
	if config.TokenURL != "" {
		tokenOpts = append(tokenOpts, graphmail.WithTokenURL(config.TokenURL))
	}
	tokens, err := graphmail.NewTokenProvider(config.TenantID, config.ClientID, config.Secret, graphmail.NewMemoryCache(), tokenOpts...)
	if err != nil {
		return err
	}

	transportOpts := []graphmail.TransportOption{graphmail.WithLogger(slogger)}
	if config.GraphBaseURL != "" {
		transportOpts = append(transportOpts, graphmail.WithBaseURL(config.GraphBaseURL))
	}
	transport, err := graphmail.NewTransport(tokens, transportOpts...)
	if err != nil {
		return err
	}

	if config.VerboseMode {
		printTokenInfo(ctx, tokens)
	}

	audit, err := logger.NewAuditLog("", "graphmailer")
	if err != nil {
		logger.Warn(slogger, "Audit log unavailable, continuing without it", "error", err)
		audit = nil
	} else {
		defer audit.Close()
		fmt.Printf("Logging to: %s\n", audit.Path())
	}

	sendErr := transport.Send(ctx, message)

	if audit != nil {
		status := "Success"
		if sendErr != nil {
			status = fmt.Sprintf("Error: %v", sendErr)
		}
		if logErr := audit.Record(status, config.From,
			strings.Join(config.To, "; "), strings.Join(config.Cc, "; "), strings.Join(config.Bcc, "; "),
			config.Subject, bodyTypeFor(message), len(message.Attachments)); logErr != nil {
			logger.Warn(slogger, "Failed to write audit log row", "error", logErr)
		}
	}

	if sendErr != nil {
		return sendErr
	}

	fmt.Printf("Email sent successfully from %s.\n", config.From)
	fmt.Printf("To: %v\n", message.To)
	if len(message.Cc) > 0 {
		fmt.Printf("Cc: %v\n", message.Cc)
	}
	if len(message.Bcc) > 0 {
		fmt.Printf("Bcc: %v\n", message.Bcc)
	}
	fmt.Printf("Subject: %s\n", config.Subject)
	fmt.Printf("Body Type: %s\n", bodyTypeFor(message))
	if len(message.Attachments) > 0 {
		fmt.Printf("Attachments: %d file(s)\n", len(message.Attachments))
	}
	return nil
}

// buildMessage converts the tool configuration into an outgoing message,
// reading attachment files from disk.
func buildMessage(config *Config, slogger *slog.Logger) (*graphmail.Message, error) {
	to := config.To
	if len(to) == 0 {
		// Sending to yourself is the sensible default for a test tool.
		to = stringSlice{config.From}
	}

	attachments, err := loadAttachments(config.AttachmentFiles, slogger)
	if err != nil {
		return nil, err
	}

	return &graphmail.Message{
		From:        graphmail.Address{Address: config.From},
		ReplyTo:     toAddresses(config.ReplyTo),
		To:          toAddresses(to),
		Cc:          toAddresses(config.Cc),
		Bcc:         toAddresses(config.Bcc),
		Subject:     config.Subject,
		TextBody:    config.Body,
		HTMLBody:    config.BodyHTML,
		Priority:    config.Priority,
		Attachments: attachments,
	}, nil
}

func toAddresses(emails []string) []graphmail.Address {
	if len(emails) == 0 {
		return nil
	}
	addrs := make([]graphmail.Address, len(emails))
	for i, email := range emails {
		addrs[i] = graphmail.Address{Address: email}
	}
	return addrs
}

// loadAttachments reads attachment files from disk, detecting the MIME type
// from the file extension.
func loadAttachments(paths []string, slogger *slog.Logger) ([]graphmail.Attachment, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	attachments := make([]graphmail.Attachment, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read attachment file %s: %w", path, err)
		}

		contentType := mime.TypeByExtension(filepath.Ext(path))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		logger.Debug(slogger, "Attachment loaded",
			"file", filepath.Base(path), "contentType", contentType, "bytes", len(data))

		attachments = append(attachments, graphmail.Attachment{
			Name:        filepath.Base(path),
			ContentType: contentType,
			Content:     data,
		})
	}
	return attachments, nil
}

func bodyTypeFor(message *graphmail.Message) string {
	switch {
	case message.HTMLBody != "":
		return "HTML"
	case message.TextBody != "":
		return "Text"
	}
	return "(none)"
}

// printWhatIf prints the built sendMail payload without sending it.
func printWhatIf(message *graphmail.Message, config *Config) error {
	payload, err := graphmail.MarshalPayload(message)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, payload, "", "  "); err != nil {
		return err
	}

	fmt.Println("========================================")
	fmt.Println("WHATIF MODE - DRY RUN (Email NOT sent)")
	fmt.Println("========================================")
	fmt.Printf("From: %s\n", config.From)
	fmt.Printf("Endpoint: POST /users/%s/sendmail\n", config.From)
	fmt.Println("Payload:")
	fmt.Println(pretty.String())
	fmt.Println("========================================")
	return nil
}

// printTokenInfo fetches a token and displays masked diagnostics including
// the application name and roles parsed from the JWT claims.
func printTokenInfo(ctx context.Context, tokens graphmail.TokenSource) {
	token, err := tokens.AccessToken(ctx)
	if err != nil {
		fmt.Printf("Warning: could not retrieve token for verbose display: %v\n", err)
		return
	}

	fmt.Println()
	fmt.Println("Token Information:")
	fmt.Println("------------------")
	fmt.Printf("Token (masked): %s\n", security.MaskAccessToken(token))
	fmt.Printf("Token length: %d characters\n", len(token))

	claims, err := graphmail.ParseTokenClaims(token)
	if err != nil {
		fmt.Printf("  (Could not parse JWT claims: %v)\n", err)
	} else {
		appName := claims.AppDisplayName
		if appName == "" {
			appName = "(not available)"
		}
		roles := "(none)"
		if len(claims.Roles) > 0 {
			roles = strings.Join(claims.Roles, ", ")
		}
		fmt.Printf("  Application Name: %s\n", appName)
		fmt.Printf("  Assigned Roles: %s\n", roles)
		if claims.ExpiresAt != nil {
			fmt.Printf("  Expires at: %s\n", claims.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
		}
	}
	fmt.Println()
}

// reportSendError prints a kind-specific message for each failure class of
// the adapter so operators can tell bad credentials from network trouble.
func reportSendError(slogger *slog.Logger, err error) {
	var configErr *graphmail.ConfigError
	var authErr *graphmail.AuthError
	var unreachableErr *graphmail.UnreachableError
	var deliveryErr *graphmail.DeliveryError

	switch {
	case errors.As(err, &configErr):
		logger.Error(slogger, "Invalid configuration", "setting", configErr.Setting, "reason", configErr.Reason)
	case errors.As(err, &authErr):
		logger.Error(slogger, "Token endpoint rejected the request",
			"status", authErr.Status, "code", authErr.Code, "description", authErr.Description)
	case errors.As(err, &unreachableErr):
		logger.Error(slogger, "Service unreachable", "kind", string(unreachableErr.Kind), "error", unreachableErr.Err)
	case errors.As(err, &deliveryErr):
		logger.Error(slogger, "Mail delivery failed", "status", deliveryErr.Status, "body", deliveryErr.Body)
	default:
		logger.Error(slogger, "Send failed", "error", err)
	}
}
