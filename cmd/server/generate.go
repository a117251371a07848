package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gwi.com/study-assistant/internal/config"
	"gwi.com/study-assistant/internal/core"
)

type generateOutput struct {
	core.Artifact
	FellBack bool `json:"fellBack"`
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one synthesis request and print the artifact as JSON",
	Long: `Run one synthesis request without saving it.

Examples:
  study-assistant generate --kind summary --file ./lecture.txt
  study-assistant generate --kind plan --text "Unit 1, Unit 2" --exam-date 2025-01-10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kindStr, _ := cmd.Flags().GetString("kind")
		text, _ := cmd.Flags().GetString("text")
		file, _ := cmd.Flags().GetString("file")
		subject, _ := cmd.Flags().GetString("subject")
		examDate, _ := cmd.Flags().GetString("exam-date")

		kind, ok := core.ParseArtifactKind(kindStr)
		if !ok {
			return fmt.Errorf("unknown --kind %q", kindStr)
		}
		if file != "" {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading file: %w", err)
			}
			text = string(data)
		}

		log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		llmService, err := newLLMService(cmd.Context(), log)
		if err != nil {
			return err
		}
		defer llmService.Close()

		// Nothing is persisted here, so no store.
		synthesis := core.NewSynthesisService(log, llmService, nil, core.SynthesisOptions{
			Model:       config.AppConfig.GeminiModel,
			Temperature: config.AppConfig.GeminiTemperature,
		})
		art, fellBack, err := synthesis.Compose(cmd.Context(), core.GenerationRequest{
			Kind:       kind,
			SourceText: text,
			Subject:    subject,
			ExamDate:   examDate,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(generateOutput{Artifact: art, FellBack: fellBack})
	},
}

func init() {
	generateCmd.Flags().String("kind", string(core.KindSummary), "summary, flashcards, quiz, plan or transcriptSummary")
	generateCmd.Flags().String("text", "", "source text (syllabus for plans)")
	generateCmd.Flags().String("file", "", "read source text from a file")
	generateCmd.Flags().String("subject", "", "subject label")
	generateCmd.Flags().String("exam-date", "", "exam date for plans (YYYY-MM-DD)")
}
