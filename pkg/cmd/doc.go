// Package cmd provides the commands of the cirrus CLI.
//
// Commands are plain functions returning a *cli.Command. They are collected
// into an fx value group and run by Run from a lifecycle start hook, sharing
// the *config.Config and store.Store provided by the config and store
// modules.
//
// # Available Commands
//
//   - list: load every migration and summarize its steps
//   - show <id>: print one migration's directives, dependencies and steps
//   - plan: print migrations in dependency order, post-apply hooks last
//   - sum: write the sum file for all migrations
//   - verify --sum FILE: compare migrations against a sum file
//
// # Example Usage
//
//	cirrus --location s3://acme-migrations/core --location ./db list
//	cirrus show 0002-create-users
//	cirrus sum --out cirrus.sum
//	cirrus verify --sum cirrus.sum
package cmd
