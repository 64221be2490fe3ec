package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var quizPage int

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Generate a multiple-choice quiz from one page",
	RunE:  runQuiz,
}

func init() {
	quizCmd.Flags().IntVarP(&quizPage, "page", "p", 0, "page to quiz on")
	rootCmd.AddCommand(quizCmd)
}

func runQuiz(cmd *cobra.Command, _ []string) error {
	if quizPage < 1 {
		return fmt.Errorf("quiz needs --page")
	}

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	document, err := resolveDocument(cmd, a)
	if err != nil {
		return err
	}
	session := a.OpenDocument(document)
	svc, err := a.Study(session)
	if err != nil {
		return err
	}

	quiz, err := svc.GenerateQuiz(cmd.Context(), quizPage)
	if err != nil {
		return err
	}

	for i, q := range quiz.Questions {
		fmt.Printf("%d. %s\n", i+1, q.Question)
		fmt.Printf("   A) %s\n   B) %s\n   C) %s\n   D) %s\n\n", q.A, q.B, q.C, q.D)
	}
	fmt.Print("Answers: ")
	for i, q := range quiz.Questions {
		if i > 0 {
			fmt.Print(", ")
		}
		fmt.Printf("%d-%s", i+1, q.CorrectOption)
	}
	fmt.Println()
	return nil
}
