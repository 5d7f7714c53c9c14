package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	linguaflowv1 "github.com/dasmlab/linguaflow/pkg/rpc/v1"
)

var (
	serverAddr = flag.String("addr", "localhost:50051", "gRPC server address")
	sourceLang = flag.String("source", "en", "Source language code (e.g., en, fr)")
	targetLang = flag.String("target", "hi", "Target language code (e.g., hi, es)")
	textFile   = flag.String("file", "", "Path to text file to translate")
	text       = flag.String("text", "", "Text to translate (if file not provided)")
	useSession = flag.Bool("session", false, "Translate through an interactive session")
	detect     = flag.Bool("detect", false, "Detect the language of the text before translating")
	showRecent = flag.Int("history", 0, "Print this many recent history records after translating")
)

func main() {
	flag.Parse()

	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	var textToTranslate string
	if *textFile != "" {
		data, err := os.ReadFile(*textFile)
		if err != nil {
			logger.WithError(err).Fatalf("Failed to read file: %s", *textFile)
		}
		textToTranslate = string(data)
	} else if *text != "" {
		textToTranslate = *text
	} else {
		logger.Fatal("Either -file or -text must be provided")
	}

	logger.WithFields(logrus.Fields{
		"server":      *serverAddr,
		"source_lang": *sourceLang,
		"target_lang": *targetLang,
		"text_length": len(textToTranslate),
	}).Info("Connecting to LinguaFlow server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := grpc.NewClient(*serverAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to server")
	}
	defer conn.Close()

	client := linguaflowv1.NewTranslatorClient(conn)

	if *detect {
		det, err := client.DetectLanguage(ctx, &linguaflowv1.DetectLanguageRequest{Text: textToTranslate})
		if err != nil {
			logger.WithError(err).Fatal("Language detection failed")
		}
		if det.Detected {
			logger.WithFields(logrus.Fields{
				"code": det.Language.Code,
				"name": det.Language.Name,
			}).Info("Detected language")
		} else {
			logger.Info("No language detected")
		}
	}

	req := &linguaflowv1.TranslateRequest{
		Text:           textToTranslate,
		SourceLanguage: *sourceLang,
		TargetLanguage: *targetLang,
	}
	if *useSession {
		opened, err := client.OpenSession(ctx, &linguaflowv1.OpenSessionRequest{
			ClientName:     "test-client",
			SourceLanguage: *sourceLang,
			TargetLanguage: *targetLang,
		})
		if err != nil {
			logger.WithError(err).Fatal("Failed to open session")
		}
		logger.WithFields(logrus.Fields{
			"session_id":         opened.SessionId,
			"heartbeat_interval": opened.HeartbeatIntervalSeconds,
		}).Info("Session opened")

		hb, err := client.Heartbeat(ctx, &linguaflowv1.HeartbeatRequest{SessionId: opened.SessionId})
		if err != nil || !hb.Success {
			logger.WithError(err).Fatal("Heartbeat failed")
		}
		req.SessionId = opened.SessionId
	}

	logger.Info("Translating text...")
	startTime := time.Now()
	resp, err := client.Translate(ctx, req)
	if err != nil {
		logger.WithError(err).Fatal("Translation failed")
	}
	duration := time.Since(startTime)

	separator := strings.Repeat("=", 80)
	dashLine := strings.Repeat("-", 80)

	fmt.Println()
	fmt.Println(separator)
	fmt.Println("TRANSLATION RESULTS")
	fmt.Println(separator)
	fmt.Printf("\nSource Language: %s\n", resp.SourceLanguage)
	fmt.Printf("Target Language: %s\n", resp.TargetLanguage)
	fmt.Printf("Characters: %d\n", resp.CharCount)
	fmt.Printf("Translation Time: %.2f seconds\n", resp.InferenceTimeSeconds)
	if resp.HistoryId > 0 {
		fmt.Printf("History ID: %d\n", resp.HistoryId)
	}
	fmt.Println()
	fmt.Println(dashLine)
	fmt.Println("ORIGINAL TEXT:")
	fmt.Println(dashLine)
	fmt.Println(resp.SourceText)
	fmt.Println()
	fmt.Println(dashLine)
	fmt.Println("TRANSLATED TEXT:")
	fmt.Println(dashLine)
	fmt.Println(resp.TranslatedText)
	fmt.Println()
	fmt.Println(separator)

	if *showRecent > 0 {
		recent, err := client.RecentHistory(ctx, &linguaflowv1.RecentHistoryRequest{Limit: int32(*showRecent)})
		if err != nil {
			logger.WithError(err).Fatal("Failed to load history")
		}
		fmt.Println("RECENT TRANSLATIONS:")
		for _, r := range recent.Records {
			fmt.Printf("  #%d [%s -> %s] %s => %s\n", r.Id, r.SourceLanguage, r.TargetLanguage, r.SourceText, r.TranslatedText)
		}
		fmt.Println(separator)
	}

	logger.WithFields(logrus.Fields{
		"duration_seconds": duration.Seconds(),
	}).Info("Translation completed successfully")
}
