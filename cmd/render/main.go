package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/qcbd/app-beneficiary/internal/document"
	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/validation"
)

// Renders the printable application document from an application JSON file,
// as returned by GET /v1/applications/orphan/{id}.
func main() {
	in := flag.String("in", "", "Application JSON file")
	out := flag.String("out", "", "Output HTML file (default stdout)")
	baseURL := flag.String("signature-base", "", "API base URL used to link staff signatures (omit to render without signatures)")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		log.Fatalf("read application: %v", err)
	}

	var app models.OrphanApplication
	if err := json.Unmarshal(data, &app); err != nil {
		log.Fatalf("decode application: %v", err)
	}

	if n := app.PrimaryInformation.NumOfSiblings; n < 0 || n > models.MaxNumOfSiblings {
		log.Fatalf("numOfSiblings %d is outside 0..%d", n, models.MaxNumOfSiblings)
	}

	if result := validation.Validate(&app, validation.Full, time.Now()); !result.Valid() {
		for _, fe := range result.Errors {
			log.Printf("warning: %s: %s", fe.Field, fe.Message)
		}
	}

	generator := document.NewGenerator(document.SignatureResolverFunc(func(_ context.Context, userID string) (string, error) {
		if *baseURL == "" {
			return "", fmt.Errorf("no signature base URL")
		}
		return strings.TrimRight(*baseURL, "/") + "/v1/users/media/" + url.PathEscape(userID) + "/file/SIGNATURE", nil
	}))

	html, err := generator.Generate(context.Background(), &app)
	if err != nil {
		log.Fatalf("render document: %v", err)
	}

	if *out == "" {
		fmt.Print(html)
		return
	}
	if err := os.WriteFile(*out, []byte(html), 0o644); err != nil {
		log.Fatalf("write document: %v", err)
	}
	log.Printf("wrote %s (%d bytes)", *out, len(html))
}
