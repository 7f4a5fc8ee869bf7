// Package extract provides the client for the external text-extraction
// service that converts live web pages into plain text.
package extract
