// Package sidecar renders the episode metadata document stored next to each
// archived recording.
package sidecar

import (
	"encoding/xml"
	"strings"

	"livearchive/internal/fileutil"
	"livearchive/internal/naming"
	"livearchive/internal/services"
)

const stageName = "sidecar"

const header = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// Record is the episodedetails document for one archived recording.
type Record struct {
	XMLName        xml.Name `xml:"episodedetails"`
	Title          string   `xml:"title"`
	ShowTitle      string   `xml:"showtitle"`
	Season         string   `xml:"season"`
	Episode        string   `xml:"episode"`
	Aired          string   `xml:"aired"`
	DisplaySeason  string   `xml:"displayseason"`
	DisplayEpisode string   `xml:"displayepisode"`
	Tag            string   `xml:"tag"`
}

// NewRecord derives the document from a resolved slot. The season is the
// capture year and the episode is the MMDD of the capture date.
func NewRecord(slot naming.Slot, showTitle string) Record {
	ct := slot.Captured
	return Record{
		Title:          slot.DisplayTitle,
		ShowTitle:      strings.TrimSpace(showTitle),
		Season:         ct.Year(),
		Episode:        ct.Episode(),
		Aired:          ct.Aired(),
		DisplaySeason:  ct.Year(),
		DisplayEpisode: ct.Episode(),
		Tag:            slot.Tag,
	}
}

// Encode renders the record as indented XML with a standalone header.
func Encode(rec Record) ([]byte, error) {
	b, err := xml.MarshalIndent(rec, "", "    ")
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(header)+len(b)+1)
	out = append(out, header...)
	out = append(out, b...)
	return append(out, '\n'), nil
}

// Write renders the sidecar for slot and stores it at slot.SidecarPath(). An
// existing sidecar is never replaced.
func Write(slot naming.Slot, showTitle string) (string, error) {
	path := slot.SidecarPath()
	data, err := Encode(NewRecord(slot, showTitle))
	if err != nil {
		return "", services.Wrap(services.ErrIO, stageName, "encode sidecar", path, err)
	}
	if err := fileutil.WriteFileExclusive(path, data, 0o644); err != nil {
		return "", services.Wrap(services.ErrIO, stageName, "write sidecar", path, err)
	}
	return path, nil
}
