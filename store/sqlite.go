package store

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/alvnz11/bunga-server/model"
)

// HistoryStore 预测历史的SQLite存储
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore 打开（必要时创建）历史数据库
func NewHistoryStore(path string) (*HistoryStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	query := `
    CREATE TABLE IF NOT EXISTS prediction_history (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        image_filename VARCHAR(255) NOT NULL,
        image_path VARCHAR(500) NOT NULL,
        prediction_svm VARCHAR(100) NOT NULL,
        confidence_svm REAL NOT NULL,
        prediction_knn VARCHAR(100) NOT NULL,
        confidence_knn REAL NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `

	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, err
	}

	return &HistoryStore{db: db}, nil
}

// SavePrediction 保存一次预测结果，返回记录ID
func (s *HistoryStore) SavePrediction(filename, path, svmClass string, svmConfidence float64, knnClass string, knnConfidence float64) (int64, error) {
	result, err := s.db.Exec(`
        INSERT INTO prediction_history
            (image_filename, image_path, prediction_svm, confidence_svm, prediction_knn, confidence_knn)
        VALUES (?, ?, ?, ?, ?, ?)`,
		filename, path, svmClass, svmConfidence, knnClass, knnConfidence)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// RecentPredictions 按时间倒序查询历史记录
func (s *HistoryStore) RecentPredictions(limit int) ([]model.HistoryRecord, error) {
	rows, err := s.db.Query(`
        SELECT id, image_filename, image_path,
               prediction_svm, confidence_svm, prediction_knn, confidence_knn, created_at
        FROM prediction_history
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.HistoryRecord
	for rows.Next() {
		var r model.HistoryRecord
		if err := rows.Scan(&r.ID, &r.ImageFilename, &r.ImagePath,
			&r.PredictionSVM, &r.ConfidenceSVM, &r.PredictionKNN, &r.ConfidenceKNN, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// PredictionByID 按ID查询单条记录，不存在时返回nil
func (s *HistoryStore) PredictionByID(id int64) (*model.HistoryRecord, error) {
	var r model.HistoryRecord
	err := s.db.QueryRow(`
        SELECT id, image_filename, image_path,
               prediction_svm, confidence_svm, prediction_knn, confidence_knn, created_at
        FROM prediction_history
        WHERE id = ?`, id).Scan(&r.ID, &r.ImageFilename, &r.ImagePath,
		&r.PredictionSVM, &r.ConfidenceSVM, &r.PredictionKNN, &r.ConfidenceKNN, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// DeletePrediction 按ID删除记录，返回是否删除了数据
func (s *HistoryStore) DeletePrediction(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM prediction_history WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Statistics 聚合统计：总数、SVM类别分布、两个模型的平均置信度
func (s *HistoryStore) Statistics() (*model.Statistics, error) {
	stats := &model.Statistics{
		ClassDistribution: make(map[string]int64),
	}

	err := s.db.QueryRow(`
        SELECT COUNT(id),
               COALESCE(AVG(confidence_svm), 0),
               COALESCE(AVG(confidence_knn), 0)
        FROM prediction_history`).Scan(
		&stats.TotalPredictions, &stats.AverageConfidenceSVM, &stats.AverageConfidenceKNN)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
        SELECT prediction_svm, COUNT(prediction_svm)
        FROM prediction_history
        GROUP BY prediction_svm`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var class string
		var count int64
		if err := rows.Scan(&class, &count); err != nil {
			return nil, err
		}
		stats.ClassDistribution[class] = count
	}
	return stats, rows.Err()
}

// Close 关闭数据库连接
func (s *HistoryStore) Close() error {
	return s.db.Close()
}
