// Package preprocess condenses a Ryujinx log into a digest an LLM can read.
//
// The pipeline has three stages:
//
//  1. Secret Redaction - Removes user names, addresses and credentials with
//     correlation-preserving hashes
//  2. Template Extraction (Drain algorithm) - Groups similar log messages
//  3. Token Budget Enforcement - Errors first, then warnings, stubs and info
//
// Basic usage:
//
//	preprocessor := preprocess.New(preprocess.WithTokenLimit(4000))
//	digest := preprocessor.Process(logText)
//
// Configuration via ~/.ryulog.yaml:
//
//	redaction:
//	  enabled: true
//	  patterns:
//	    - user_path
//	    - ipv4
//	    - email
package preprocess
