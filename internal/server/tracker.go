package server

import (
	"context"
	"errors"
	"net/http"
	"tengoku-tracker/internal/domain"
	"tengoku-tracker/internal/payload"

	"connectrpc.com/connect"
)

const TrackerServiceName = "tengoku.v1.TrackerService"

const (
	SubmitMatchProcedure    = "/" + TrackerServiceName + "/SubmitMatch"
	GetLeaderboardProcedure = "/" + TrackerServiceName + "/GetLeaderboard"
	GetHistoryProcedure     = "/" + TrackerServiceName + "/GetHistory"
	GetProfileProcedure     = "/" + TrackerServiceName + "/GetProfile"
)

var errMissingPuuid = errors.New("puuid is required")

type MatchSubmitter interface {
	SubmitMatch(ctx context.Context, sub domain.MatchSubmission) (*domain.MatchResult, error)
}

type Reader interface {
	Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error)
	History(ctx context.Context, puuid string) ([]domain.MatchHistoryEntry, error)
	Profile(ctx context.Context, puuid string) (*domain.Profile, error)
	AdjustTP(ctx context.Context, puuid string, delta int) (int, error)
}

type TrackerServer struct {
	matches MatchSubmitter
	reader  Reader
}

func NewTrackerServer(matches MatchSubmitter, reader Reader) *TrackerServer {
	return &TrackerServer{matches: matches, reader: reader}
}

// Handler returns the path prefix and handler serving every TrackerService procedure.
func (s *TrackerServer) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(SubmitMatchProcedure, connect.NewUnaryHandler(SubmitMatchProcedure, s.SubmitMatch, opts...))
	mux.Handle(GetLeaderboardProcedure, connect.NewUnaryHandler(GetLeaderboardProcedure, s.GetLeaderboard, opts...))
	mux.Handle(GetHistoryProcedure, connect.NewUnaryHandler(GetHistoryProcedure, s.GetHistory, opts...))
	mux.Handle(GetProfileProcedure, connect.NewUnaryHandler(GetProfileProcedure, s.GetProfile, opts...))
	return "/" + TrackerServiceName + "/", mux
}

func (s *TrackerServer) SubmitMatch(ctx context.Context, req *connect.Request[payload.Game]) (*connect.Response[payload.SubmitResponse], error) {
	result, err := s.matches.SubmitMatch(ctx, req.Msg.ToSubmission())
	if err != nil {
		return nil, connectError(err)
	}
	resp := payload.FromMatchResult(result)
	return connect.NewResponse(&resp), nil
}

func (s *TrackerServer) GetLeaderboard(ctx context.Context, _ *connect.Request[payload.LeaderboardRequest]) (*connect.Response[payload.LeaderboardResponse], error) {
	entries, err := s.reader.Leaderboard(ctx)
	if err != nil {
		return nil, connectError(err)
	}
	resp := payload.FromLeaderboard(entries)
	return connect.NewResponse(&resp), nil
}

func (s *TrackerServer) GetHistory(ctx context.Context, req *connect.Request[payload.PuuidRequest]) (*connect.Response[payload.HistoryResponse], error) {
	if req.Msg.Puuid == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errMissingPuuid)
	}

	entries, err := s.reader.History(ctx, req.Msg.Puuid)
	if err != nil {
		return nil, connectError(err)
	}
	resp := payload.FromHistory(req.Msg.Puuid, entries)
	return connect.NewResponse(&resp), nil
}

func (s *TrackerServer) GetProfile(ctx context.Context, req *connect.Request[payload.PuuidRequest]) (*connect.Response[payload.ProfileResponse], error) {
	if req.Msg.Puuid == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errMissingPuuid)
	}

	profile, err := s.reader.Profile(ctx, req.Msg.Puuid)
	if err != nil {
		return nil, connectError(err)
	}
	resp := payload.FromProfile(profile)
	return connect.NewResponse(&resp), nil
}
