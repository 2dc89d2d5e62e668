// Package store provides read-only access to the directories migrations are
// discovered from.
//
// A Store lists the files directly under a location and opens individual
// files. Three backends are provided:
//
//   - FS reads from any afero.Fs, normally the host filesystem
//   - S3 reads from Amazon S3 or an S3-compatible service (s3://bucket/prefix)
//   - Azure reads from Azure Blob Storage (azblob://container/prefix)
//
// Mux combines them, routing each location or path by its URL scheme:
//
//	st := store.New(cfg)
//	files, err := st.List(ctx, "s3://acme/migrations")
//	if err != nil {
//		return err
//	}
//
// Every backend reports a missing file with an error that satisfies
// errors.Is(err, store.ErrNotFound). All backends are safe for concurrent use.
package store
