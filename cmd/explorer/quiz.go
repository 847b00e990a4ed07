package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/world-explorer/quiz"
)

func newQuizCmd(a *app) *cobra.Command {
	quizCmd := &cobra.Command{
		Use:   "quiz",
		Short: "Save and list quiz results",
	}

	var score, total, correct int
	var questionsFile string
	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Save a finished quiz",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := quiz.Input{Score: &score, TotalQuestions: &total, CorrectAnswers: &correct}
			if questionsFile != "" {
				data, err := os.ReadFile(questionsFile)
				if err != nil {
					return err
				}
				if !json.Valid(data) {
					return fmt.Errorf("%s is not valid JSON", questionsFile)
				}
				in.Questions = data
			}

			result, err := a.client.SaveQuizResult(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved result %s: %d/%d correct, score %d\n",
				result.ID, result.CorrectAnswers, result.TotalQuestions, result.Score)
			return nil
		},
	}
	saveCmd.Flags().IntVar(&score, "score", 0, "quiz score")
	saveCmd.Flags().IntVar(&total, "total", 0, "number of questions")
	saveCmd.Flags().IntVar(&correct, "correct", 0, "number of correct answers")
	saveCmd.Flags().StringVar(&questionsFile, "questions", "", "JSON file with the questions asked")
	_ = saveCmd.MarkFlagRequired("score")
	_ = saveCmd.MarkFlagRequired("total")
	_ = saveCmd.MarkFlagRequired("correct")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List quiz results, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			results, err := a.client.QuizResults(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No quiz results yet")
				return nil
			}
			for _, r := range results {
				fmt.Fprintf(out, "%s  %2d/%-2d  score %d\n",
					r.QuizDate.Local().Format(time.DateTime), r.CorrectAnswers, r.TotalQuestions, r.Score)
			}
			return nil
		},
	}

	quizCmd.AddCommand(saveCmd, listCmd)
	return quizCmd
}
