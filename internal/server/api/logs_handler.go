package api

import (
	"bufio"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cxd19ojbk666/KlineMonitor/pkg/types"
)

const maxLogLines = 5000

// handleLogFiles 列出日志目录下的全部日志文件
func (s *Server) handleLogFiles(c echo.Context) error {
	entries, err := os.ReadDir(s.cfg.Log.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return c.JSON(http.StatusOK, echo.Map{"total": 0, "items": []types.LogFile{}})
		}
		return err
	}

	files := make([]types.LogFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, types.LogFile{
			Name:       entry.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime().In(types.CST),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].ModifiedAt.After(files[j].ModifiedAt)
	})

	return c.JSON(http.StatusOK, echo.Map{"total": len(files), "items": files})
}

// handleTodayLog 查看当日日志，按级别过滤
func (s *Server) handleTodayLog(c echo.Context) error {
	logType := c.QueryParam("log_type")
	if logType == "" {
		logType = "app"
	}

	var file, levelFilter string
	switch logType {
	case "app":
		file = "app.log"
	case "info":
		file, levelFilter = "app.log", `"level":"info"`
	case "warning":
		file, levelFilter = "app.log", `"level":"warn"`
	case "error":
		file = "error.log"
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "不支持的日志类型: "+logType)
	}

	lines, total, err := s.readLogTail(file, maxLogLines, levelFilter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, types.LogContent{
		File:       file,
		Lines:      lines,
		TotalLines: total,
		Returned:   len(lines),
	})
}

// handleLogContent 查看指定日志文件的内容
func (s *Server) handleLogContent(c echo.Context) error {
	file := c.Param("file")
	if file != filepath.Base(file) || !strings.HasSuffix(file, ".log") {
		return echo.NewHTTPError(http.StatusBadRequest, "非法的日志文件名")
	}

	limit, err := strconv.Atoi(c.QueryParam("lines"))
	if err != nil || limit <= 0 || limit > maxLogLines {
		limit = maxLogLines
	}

	lines, total, err := s.readLogTail(file, limit, c.QueryParam("search"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, types.LogContent{
		File:       file,
		Lines:      lines,
		TotalLines: total,
		Returned:   len(lines),
	})
}

// readLogTail 读取日志文件末尾若干行，filter非空时只保留匹配行
func (s *Server) readLogTail(name string, limit int, filter string) ([]string, int, error) {
	path := filepath.Join(s.cfg.Log.FilePath, name)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, echo.NewHTTPError(http.StatusNotFound, "日志文件不存在: "+name)
		}
		return nil, 0, err
	}
	defer f.Close()

	var lines []string
	total := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if filter != "" && !strings.Contains(line, filter) {
			continue
		}
		total++
		lines = append(lines, line)
		if len(lines) > limit {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, err
	}
	if lines == nil {
		lines = []string{}
	}
	return lines, total, nil
}
