package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/brain-tumor-detection/tumorscan/internal/classes"
	"github.com/brain-tumor-detection/tumorscan/internal/config"
	"github.com/brain-tumor-detection/tumorscan/internal/evaluation"
	"github.com/brain-tumor-detection/tumorscan/internal/models"
	"github.com/brain-tumor-detection/tumorscan/internal/prediction"
	"github.com/brain-tumor-detection/tumorscan/internal/render"
	"github.com/brain-tumor-detection/tumorscan/internal/session"
	"github.com/spf13/cobra"
)

// predictOutput is the --json form of a single prediction
type predictOutput struct {
	File   string                 `json:"file"`
	Result *models.PredictionView `json:"result,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

func newPredictCmd() *cobra.Command {
	var flags config.Flags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "predict <image>",
		Short: "Classify a single brain MRI scan",
		Example: `  # Classify with the local model server
  tumorscan predict scan.jpg

  # Classify with Gemini and print JSON
  tumorscan predict scan.png --backend gemini --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			predictor, _, err := flags.Predictor(cmd)
			if err != nil {
				return err
			}

			path := args[0]
			img, err := evaluation.LoadImage(path)
			if err != nil {
				return err
			}

			machine := session.New()
			if err := machine.SelectImage(img, path); err != nil {
				return err
			}
			submitErr := machine.Submit(cmd.Context(), predictor)
			if submitErr != nil && machine.Phase() != session.Failed {
				return submitErr
			}

			snapshot := machine.Snapshot()
			filename := filepath.Base(path)
			out := cmd.OutOrStdout()

			if asJSON {
				output := predictOutput{File: filename, Error: snapshot.Err}
				if snapshot.Result != nil {
					output.Result = &models.PredictionView{
						Class:      models.NewClassInfo(snapshot.Result.Label),
						Confidence: snapshot.Result.Confidence,
						Percent:    classes.FormatConfidence(snapshot.Result.Confidence),
					}
				}
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(output); err != nil {
					return err
				}
			} else if snapshot.Result != nil {
				fmt.Fprintln(out, render.Card(filename, *snapshot.Result))
			} else {
				fmt.Fprintln(out, render.Failure(filename, snapshot.Err))
			}

			if snapshot.Phase == session.Failed {
				return errors.New(prediction.UserFacing(submitErr))
			}
			return nil
		},
	}

	flags.Register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}
