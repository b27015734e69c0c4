package analyze

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agrovision/cropguard-go/internal/conf"
	"github.com/agrovision/cropguard-go/internal/diagnosis"
	"github.com/agrovision/cropguard-go/internal/knowledge"
	"github.com/agrovision/cropguard-go/internal/translate"
)

// Command creates the command that classifies a single image without
// persisting anything.
func Command(settings *conf.Settings) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "analyze [image]",
		Short: "Classify a single image",
		Long:  "Run the disease classifier on one image reference and print the diagnosis as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := knowledge.NewBase()
			classifier := diagnosis.NewClassifier(base)
			translator := translate.NewService(translate.NewCatalog(),
				translate.NewProvider(settings.Translation.Provider))

			if language == "" {
				language = settings.Detection.Locale
			}

			result := classifier.Classify(cmd.Context(), args[0])
			result = translator.Detection(cmd.Context(), result, language)

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to render result: %w", err)
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&language, "language", viper.GetString("detection.locale"), "Response language code")

	return cmd
}
