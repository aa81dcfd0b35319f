// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for devs.
//
// The command tree is rebuilt for every invocation: system commands are
// static, while project and method commands come from the deployment template
// and the remote command catalog. Each forwarding command claims the part of
// the raw arguments that follows its name; cobra only ever parses the rest.
package cmd
