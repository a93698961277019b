package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jonathan/coverletter-agent/internal/store"
)

var uploadCommand = &cobra.Command{
	Use:   "upload",
	Short: "Upload a reference document for a user",
	Long:  "Copies a resume or writing-style sample into the documents directory. Generation runs ground every claim in the uploaded resume.",
	RunE:  runUploadCmd,
}

var (
	uploadUserID   int64
	uploadCategory string
	uploadFile     string
	uploadDocsDir  string
)

func init() {
	uploadCommand.Flags().Int64VarP(&uploadUserID, "user", "u", 1, "Numeric user id")
	uploadCommand.Flags().StringVarP(&uploadCategory, "category", "c", "", "Document category: resume or style-guide (required)")
	uploadCommand.Flags().StringVarP(&uploadFile, "file", "f", "", "Path to the document text file (required)")
	uploadCommand.Flags().StringVar(&uploadDocsDir, "documents-dir", "", "Documents directory (defaults to DOCUMENTS_DIR or 'documents')")

	_ = uploadCommand.MarkFlagRequired("category")
	_ = uploadCommand.MarkFlagRequired("file")

	rootCmd.AddCommand(uploadCommand)
}

func runUploadCmd(_ *cobra.Command, _ []string) error {
	category := store.DocumentCategory(uploadCategory)
	var target string
	switch category {
	case store.CategoryResume:
		target = "resume.txt"
	case store.CategoryStyleGuide:
		target = "style_guide.txt"
	default:
		return fmt.Errorf("unknown category %q (want resume or style-guide)", uploadCategory)
	}

	docsDir := uploadDocsDir
	if docsDir == "" {
		docsDir = os.Getenv("DOCUMENTS_DIR")
	}
	if docsDir == "" {
		docsDir = "documents"
	}

	content, err := os.ReadFile(uploadFile)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	userDir := filepath.Join(docsDir, strconv.FormatInt(uploadUserID, 10))
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return fmt.Errorf("failed to create user directory: %w", err)
	}
	path := filepath.Join(userDir, target)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	fmt.Printf("Uploaded %s for user %d to %s.\n", category, uploadUserID, path)
	return nil
}
