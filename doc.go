// Package seoagent is the Composition Root of the SEO article toolkit.
//
// It connects the article domain (pkg/core) with the file-per-record store
// (pkg/adapters/fs) using the Hexagonal Architecture pattern, and is the entry
// point for the tool layer (pkg/tools) an agent drives.
//
// Features:
//
//   - **One File Per Article**: records live as `{slug}-{YYYYMMDDHHMMSS}.json` (or `.yaml`), readable by hand.
//   - **Status Workflow**: articles move between draft and published; publishedAt is stamped once.
//   - **Resilient Scans**: corrupt records are logged and skipped, never fatal.
//   - **Atomic Writes**: every write goes through a temp file and rename.
//   - **Collaborators**: DataForSEO keyword research (pkg/research) and Imagen featured images (pkg/imagen).
//
// Usage:
//
//	svc, err := seoagent.New("./articles_data",
//		seoagent.WithLogger(logger),
//	)
//
//	receipt, err := svc.CreateArticle(ctx, seoagent.CreateInput{Title: "Best Gin for Tonic"})
package seoagent
