package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winsettle/internal/store"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err == nil {
		out := GetStatusOutput{
			DaemonRunning: status.DaemonRunning,
			UptimeSeconds: status.UptimeSeconds,
			QuietPeriodMS: status.QuietPeriodMS,
			StoreFile:     status.StoreFile,
			StoredCount:   status.StoredCount,
			Tracked:       make([]TrackedInfo, 0, len(status.Tracked)),
		}
		for _, tw := range status.Tracked {
			out.Tracked = append(out.Tracked, TrackedInfo{
				WindowID: uint32(tw.ID),
				Key:      tw.Key,
				Title:    tw.Title,
			})
		}
		return nil, out, nil
	}

	st, storeErr := s.openStore()
	if storeErr != nil {
		return nil, GetStatusOutput{}, storeErr
	}
	return nil, GetStatusOutput{
		DaemonRunning: false,
		StoreFile:     st.Path(),
		StoredCount:   len(st.List()),
		Tracked:       []TrackedInfo{},
	}, nil
}

func (s *Server) handleListGeometry(_ context.Context, _ *mcpsdk.CallToolRequest, args ListGeometryInput) (*mcpsdk.CallToolResult, ListGeometryOutput, error) {
	source := "daemon"
	entries, err := s.daemon.ListGeometry()
	if err != nil {
		st, storeErr := s.openStore()
		if storeErr != nil {
			return nil, ListGeometryOutput{}, storeErr
		}
		source = "file"
		entries = st.List()
	}

	key := strings.TrimSpace(args.Key)
	out := ListGeometryOutput{Source: source, Entries: make([]GeometryInfo, 0, len(entries))}
	for _, e := range entries {
		if key != "" && e.Key != key {
			continue
		}
		out.Entries = append(out.Entries, geometryInfo(e))
	}
	return nil, out, nil
}

func (s *Server) handleForgetGeometry(_ context.Context, _ *mcpsdk.CallToolRequest, args ForgetGeometryInput) (*mcpsdk.CallToolResult, ForgetGeometryOutput, error) {
	key := strings.TrimSpace(args.Key)
	if key == "" {
		return nil, ForgetGeometryOutput{}, fmt.Errorf("key is required")
	}

	removed, err := s.daemon.ForgetGeometry(key)
	if err != nil {
		// Daemon is down: nothing else writes the file.
		st, storeErr := s.openStore()
		if storeErr != nil {
			return nil, ForgetGeometryOutput{}, storeErr
		}
		removed = st.Delete(key)
		if removed {
			if err := st.Save(); err != nil {
				return nil, ForgetGeometryOutput{}, err
			}
		}
	}
	return nil, ForgetGeometryOutput{Key: key, Removed: removed}, nil
}

func (s *Server) openStore() (*store.Store, error) {
	st, err := store.Open(s.storePath)
	if err != nil {
		return nil, fmt.Errorf("daemon not reachable and store unreadable: %w", err)
	}
	return st, nil
}

func geometryInfo(e store.Entry) GeometryInfo {
	info := GeometryInfo{
		Key:    e.Key,
		X:      e.Geometry.Position.X,
		Y:      e.Geometry.Position.Y,
		Width:  e.Geometry.Size.Width,
		Height: e.Geometry.Size.Height,
	}
	if !e.UpdatedAt.IsZero() {
		info.UpdatedAt = e.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return info
}
