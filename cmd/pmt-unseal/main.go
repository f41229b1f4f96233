// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// This tool unseals a Payment Method Token envelope from the command line,
// for manual testing against a configured recipient key and sender trust
// set.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/sethvargo/go-signalcontext"
	"go.opencensus.io/trace"

	"github.com/google/payment-method-token/pkg/fetchcache"
	"github.com/google/payment-method-token/pkg/logging"
	"github.com/google/payment-method-token/pkg/pmt"
)

var (
	sealedFile     = flag.String("sealed", "", "path to a file containing the sealed token JSON")
	recipientKey   = flag.String("recipient-key", "", "path to a PEM or base64 PKCS#8 recipient private key")
	recipientID    = flag.String("recipient-id", "", "recipientId bound into the token signature")
	senderID       = flag.String("sender-id", "Google", "senderId bound into the token signature")
	senderKey      = flag.String("sender-key", "", "path to a PEM or base64 SPKI sender verifying key")
	protocolVer    = flag.String("protocol-version", "ECv1", "ECv1 or ECv2")
	fetchKeysURL   = flag.String("fetch-keys-url", "", "optional trusted-keys endpoint to fetch sender keys from instead of --sender-key")
	fetchKeysTTL   = flag.Duration("fetch-keys-ttl", time.Hour, "TTL for --fetch-keys-url")
)

// config is populated from the environment for fields that are more at home
// as operational configuration than command-line flags (spec's ambient
// config stack, carried through to CLI tooling the way the teacher's own
// tools do via setup.Setup).
type config struct {
	LogDebug bool `env:"LOG_DEBUG, default=false"`
}

func main() {
	ctx, done := signalcontext.OnInterrupt()

	var cfg config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to process environment config: %v\n", err)
		os.Exit(1)
	}

	debug, _ := strconv.ParseBool(os.Getenv("LOG_DEBUG"))
	logger := logging.NewLogger(debug || cfg.LogDebug).Named("pmt-unseal")
	ctx = logging.WithLogger(ctx, logger)

	err := realMain(ctx)
	done()

	if err != nil {
		logger.Fatal(err)
	}
}

func realMain(ctx context.Context) error {
	flag.Parse()

	ctx, span := trace.StartSpan(ctx, "pmt-unseal.realMain")
	defer span.End()

	logger := logging.WithTrace(ctx, logging.FromContext(ctx))

	if *sealedFile == "" {
		return fmt.Errorf("--sealed is required")
	}
	if *recipientKey == "" {
		return fmt.Errorf("--recipient-key is required")
	}
	if *recipientID == "" {
		return fmt.Errorf("--recipient-id is required")
	}

	version, err := pmt.ParseProtocolVersion(*protocolVer)
	if err != nil {
		return fmt.Errorf("--protocol-version: %w", err)
	}

	sealed, err := os.ReadFile(*sealedFile)
	if err != nil {
		return fmt.Errorf("reading --sealed: %w", err)
	}

	recipientKeyData, err := os.ReadFile(*recipientKey)
	if err != nil {
		return fmt.Errorf("reading --recipient-key: %w", err)
	}

	builder := pmt.NewRecipientBuilder().
		ProtocolVersion(version).
		SenderID(*senderID).
		RecipientID(*recipientID).
		AddRecipientPrivateKey(string(recipientKeyData))

	switch {
	case *fetchKeysURL != "":
		logger.Infow("fetching trusted sender keys", "key_fetch_uri", *fetchKeysURL)
		cache := fetchcache.New([]fetchcache.Source{&fetchcache.HTTPSource{URL: *fetchKeysURL}}, *fetchKeysTTL, 2)
		builder = builder.FetchSenderVerifyingKeysWith(cache)
	case *senderKey != "":
		senderKeyData, err := os.ReadFile(*senderKey)
		if err != nil {
			return fmt.Errorf("reading --sender-key: %w", err)
		}
		builder = builder.AddSenderVerifyingKey(string(senderKeyData))
	default:
		return fmt.Errorf("one of --sender-key or --fetch-keys-url is required")
	}

	recipient, err := builder.Build()
	if err != nil {
		return fmt.Errorf("building recipient: %w", err)
	}

	plaintext, err := recipient.Unseal(ctx, string(sealed))
	if err != nil {
		return fmt.Errorf("unseal: %w", err)
	}

	logger.Infow("unsealed token",
		"protocol_version", version.String(),
		"sender_id", *senderID,
		"recipient_id", *recipientID,
		"plaintext_length", len(plaintext))
	fmt.Println(plaintext)
	return nil
}
