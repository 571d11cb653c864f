// Package api provides HTTP handlers for the scheduling API.
package api
