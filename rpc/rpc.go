package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/grapeserver/logger"
	"github.com/wfunc/grapeserver/models"
	"github.com/wfunc/grapeserver/room"
	"github.com/wfunc/grapeserver/services"
	"github.com/wfunc/grapeserver/session"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService 运维查询接口：在线统计与历史对局。
// 方法签名遵循 net/rpc 约定。
type AdminService struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
	records        *services.RecordService
}

// NewAdminService creates a new AdminService.
func NewAdminService(rm *room.Manager, sm *session.Manager, records *services.RecordService) *AdminService {
	return &AdminService{
		roomManager:    rm,
		sessionManager: sm,
		records:        records,
	}
}

type StatsArgs struct{}

type StatsReply struct {
	ActiveRooms    int
	OnlineSessions int
}

// Stats 返回当前房间数与在线连接数
func (a *AdminService) Stats(args *StatsArgs, reply *StatsReply) error {
	reply.ActiveRooms = a.roomManager.RoomCount()
	reply.OnlineSessions = a.sessionManager.Count()
	return nil
}

type RecentGamesArgs struct {
	Limit int
}

type RecentGamesReply struct {
	Records []models.GameRecord
}

// RecentGames 返回最近的对局记录；未配置数据库时返回空
func (a *AdminService) RecentGames(args *RecentGamesArgs, reply *RecentGamesReply) error {
	if a.records == nil {
		reply.Records = nil
		return nil
	}
	records, err := a.records.RecentGames(args.Limit)
	if err != nil {
		return err
	}
	reply.Records = records
	return nil
}

type PlayerStatsArgs struct {
	Name string
}

type PlayerStatsReply struct {
	Stats *models.PlayerStats
}

// PlayerStats 按昵称查询胜负统计；未配置数据库时返回空
func (a *AdminService) PlayerStats(args *PlayerStatsArgs, reply *PlayerStatsReply) error {
	if a.records == nil {
		return nil
	}
	stats, err := a.records.PlayerStats(args.Name)
	if err != nil {
		return err
	}
	reply.Stats = stats
	return nil
}
