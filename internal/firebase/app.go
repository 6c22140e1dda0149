package firebase

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// CredentialOption picks the service account credentials: the base64
// encoded JSON in encodedCreds when set, otherwise the key file at
// localFilePath.
func CredentialOption(encodedCreds, localFilePath string, log *logrus.Logger) (option.ClientOption, error) {
	if encodedCreds != "" {
		decoded, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 firebase credentials: %w", err)
		}
		log.Info("firebase: initializing from FIREBASE_SERVICE_ACCOUNT_JSON")
		return option.WithCredentialsJSON(decoded), nil
	}

	if _, err := os.Stat(localFilePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("local firebase file not found: %s, and FIREBASE_SERVICE_ACCOUNT_JSON is not set", localFilePath)
	}
	log.WithField("path", localFilePath).Info("firebase: initializing from local key file")
	return option.WithCredentialsFile(localFilePath), nil
}

// NewApp initializes the Firebase app with opt from CredentialOption.
func NewApp(ctx context.Context, databaseURL string, opt option.ClientOption) (*firebase.App, error) {
	conf := &firebase.Config{DatabaseURL: databaseURL}

	app, err := firebase.NewApp(ctx, conf, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	return app, nil
}
