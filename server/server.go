package server

import (
	"encoding/json"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/grapeserver/broadcast"
	"github.com/wfunc/grapeserver/config"
	"github.com/wfunc/grapeserver/game"
	"github.com/wfunc/grapeserver/logger"
	"github.com/wfunc/grapeserver/models"
	"github.com/wfunc/grapeserver/monitor"
	"github.com/wfunc/grapeserver/network"
	"github.com/wfunc/grapeserver/persistence"
	"github.com/wfunc/grapeserver/room"
	grapeserver_rpc "github.com/wfunc/grapeserver/rpc"
	"github.com/wfunc/grapeserver/services"
	"github.com/wfunc/grapeserver/session"
	"github.com/wfunc/grapeserver/timer"
)

const (
	joinFailedRoomNotFound = "房间不存在"
	joinFailedRoomFull     = "房间已满"
)

type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	broadcaster    broadcast.Broadcaster
	recordService  *services.RecordService
	recorder       room.ResultRecorder
	rpcServer      *grapeserver_rpc.Server
	mon            *monitor.Monitor
	timers         *timer.Manager
	roomTTL        time.Duration
	metricsAddr    string
	shutdownChan   chan struct{}
}

// resultSink 终局记录的汇聚点：更新指标，有数据库时再落库
type resultSink struct {
	mon     *monitor.Monitor
	records *services.RecordService
}

func (s *resultSink) RecordGame(record *models.GameRecord) {
	s.mon.IncGamesCompleted()
	if s.records != nil {
		s.records.RecordGame(record)
	}
}

// NewGameServer 组装全部组件。db 可以为 nil（不落库运行）。
func NewGameServer(cfg *config.Config, db persistence.Database) *GameServer {
	s := &GameServer{
		addr:           cfg.Server.HTTPAddress,
		roomManager:    room.NewRoomManager(),
		sessionManager: session.NewManager(),
		mon:            monitor.NewMonitor("grapeserver"),
		timers:         timer.NewManager(),
		roomTTL:        cfg.Game.RoomTTL,
		metricsAddr:    cfg.Server.MetricsAddress,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	// 初始化广播器
	s.broadcaster = broadcast.NewRoomBroadcaster(s.roomManager, s.sessionManager)

	if db != nil {
		s.recordService = services.NewRecordService(db)
	}
	s.recorder = &resultSink{mon: s.mon, records: s.recordService}

	// 初始化RPC服务器
	rpcServer, err := grapeserver_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	// 注册RPC服务
	adminService := grapeserver_rpc.NewAdminService(s.roomManager, s.sessionManager, s.recordService)
	rpc.Register(adminService)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	s.mon.StartServer(s.metricsAddr)

	// 周期刷新指标并清理僵尸房间
	s.timers.Schedule(30*time.Second, 30*time.Second, func() {
		s.roomManager.SweepIdle(s.roomTTL)
		s.mon.SetActiveRooms(s.roomManager.RoomCount())
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.timers.Stop()
	s.rpcServer.Stop()
}

// handleHealth 健康检查：进程状态 + 当前房间数
func (s *GameServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.HealthStatus{
		Status:      "ok",
		ActiveRooms: s.roomManager.RoomCount(),
	})
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.mon.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		s.mon.DecOnlinePlayers()

		// 断线即失去座位，清空的房间随即销毁
		for _, roomID := range s.roomManager.RemoveSession(sess.GetID()) {
			logger.Log.Infof("房间 %s 已关闭", roomID)
		}
		s.mon.SetActiveRooms(s.roomManager.RoomCount())

		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	// 单个事件的异常不能波及进程和其他房间
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("Panic while handling msg %d from session %s: %v", packet.MsgID, sess.GetID(), r)
		}
	}()

	start := time.Now()
	s.mon.IncMessagesReceived()
	defer func() {
		s.mon.ObserveMessageLatency(time.Since(start))
	}()

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.LastActive = time.Now()
	case network.MsgTypeCreateRoom:
		s.handleCreateRoom(sess, packet)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeSetPoison:
		s.handleSetPoison(sess, packet)
	case network.MsgTypePlayerMove:
		s.handlePlayerMove(sess, packet)
	case network.MsgTypeResetGame:
		s.handleResetGame(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

func (s *GameServer) handleCreateRoom(sess *session.Session, packet *network.Packet) {
	var req models.CreateRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		logger.Log.Warnf("Malformed create-room payload from %s: %v", sess.GetID(), err)
		return
	}
	if req.RoomID == "" || req.PlayerName == "" {
		return
	}

	// 一条连接至多绑定一个座位
	if roomID, _ := sess.Seat(); roomID != "" {
		logger.Log.Warnf("Session %s tried to create a room while seated in %s", sess.GetID(), roomID)
		return
	}

	_, err := s.roomManager.CreateRoom(req.RoomID, sess, req.PlayerName, s.broadcaster, s.recorder)
	if err != nil {
		sess.Send(network.MsgTypeRoomExists, []byte(`{}`))
		return
	}

	logger.Log.Infof("房间 %s 创建成功", req.RoomID)
	s.mon.SetActiveRooms(s.roomManager.RoomCount())

	data, _ := json.Marshal(models.RoomCreatedMsg{
		RoomID:     req.RoomID,
		PlayerRole: game.RoleA,
		PlayerName: req.PlayerName,
	})
	sess.Send(network.MsgTypeRoomCreated, data)
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req models.JoinRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		logger.Log.Warnf("Malformed join-room payload from %s: %v", sess.GetID(), err)
		return
	}
	if req.RoomID == "" || req.PlayerName == "" {
		return
	}

	if roomID, _ := sess.Seat(); roomID != "" {
		logger.Log.Warnf("Session %s tried to join a room while seated in %s", sess.GetID(), roomID)
		return
	}

	r, err := s.roomManager.JoinRoom(req.RoomID, sess, req.PlayerName)
	if err != nil {
		msg := joinFailedRoomNotFound
		if err == room.ErrRoomFull {
			msg = joinFailedRoomFull
		}
		data, _ := json.Marshal(models.JoinFailedMsg{Message: msg})
		sess.Send(network.MsgTypeJoinFailed, data)
		return
	}

	logger.Log.Infof("玩家 %s 加入房间 %s", req.PlayerName, req.RoomID)

	data, _ := json.Marshal(models.JoinSuccessMsg{
		RoomID:     req.RoomID,
		PlayerRole: game.RoleB,
		PlayerName: req.PlayerName,
	})
	sess.Send(network.MsgTypeJoinSuccess, data)

	// 双方到齐，开局广播携带双方昵称（与状态广播分开，客户端只渲染一次）
	playerA, playerB := r.PlayerNames()
	startData, _ := json.Marshal(models.GameStartMsg{
		PlayerA: playerA,
		PlayerB: playerB,
	})
	r.Broadcast(network.MsgTypeGameStart, startData)
}

// memberRoom 校验会话确实坐在请求的房间里；不满足一律当过期意图丢弃
func (s *GameServer) memberRoom(sess *session.Session, roomID string) (*room.Room, bool) {
	seatRoomID, _ := sess.Seat()
	if seatRoomID == "" || seatRoomID != roomID {
		return nil, false
	}

	r, exists := s.roomManager.GetRoom(roomID)
	if !exists {
		return nil, false
	}
	return r, true
}

func (s *GameServer) handleSetPoison(sess *session.Session, packet *network.Packet) {
	var req models.CellRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		logger.Log.Warnf("Malformed set-poison payload from %s: %v", sess.GetID(), err)
		return
	}

	cell := models.Cell{Row: req.Row, Col: req.Col}
	if !game.InBounds(cell) {
		logger.Log.Warnf("Out-of-range poison coordinate (%d,%d) from %s", req.Row, req.Col, sess.GetID())
		return
	}

	r, ok := s.memberRoom(sess, req.RoomID)
	if !ok {
		return
	}

	if err := r.HandleSetPoison(sess, cell); err != nil {
		logger.Log.Errorf("Error handling set-poison in room %s: %v", req.RoomID, err)
	}
}

func (s *GameServer) handlePlayerMove(sess *session.Session, packet *network.Packet) {
	var req models.CellRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		logger.Log.Warnf("Malformed player-move payload from %s: %v", sess.GetID(), err)
		return
	}

	cell := models.Cell{Row: req.Row, Col: req.Col}
	if !game.InBounds(cell) {
		logger.Log.Warnf("Out-of-range move coordinate (%d,%d) from %s", req.Row, req.Col, sess.GetID())
		return
	}

	r, ok := s.memberRoom(sess, req.RoomID)
	if !ok {
		return
	}

	if err := r.HandleMove(sess, cell); err != nil {
		logger.Log.Errorf("Error handling player-move in room %s: %v", req.RoomID, err)
	}
}

func (s *GameServer) handleResetGame(sess *session.Session, packet *network.Packet) {
	var req models.ResetRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		logger.Log.Warnf("Malformed reset-game payload from %s: %v", sess.GetID(), err)
		return
	}

	r, ok := s.memberRoom(sess, req.RoomID)
	if !ok {
		return
	}

	if err := r.HandleReset(sess); err != nil {
		logger.Log.Errorf("Error handling reset-game in room %s: %v", req.RoomID, err)
	}
}
