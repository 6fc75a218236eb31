package form

import (
	"testing"

	"formhub-service/service/activity"
	"formhub-service/service/database"
	"formhub-service/service/models"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// RecordServiceTestSuite 记录网关测试套件
type RecordServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	records *RecordService
	form    *models.DynamicForm
	actor   activity.Actor
}

func (suite *RecordServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	provisioner := database.NewTableProvisioner(suite.db)
	activityLogger := activity.NewLogger(suite.db)
	suite.records = NewRecordService(suite.db, activityLogger)
	suite.actor = activity.Actor{ID: "user-1", IPAddress: "10.0.0.8", UserAgent: "go-test"}

	formService := NewService(suite.db, provisioner)
	created, err := formService.CreateForm(&models.CreateFormRequest{
		Name: "每日血库登记",
		Slug: "daily-log",
		Columns: models.ColumnSpecList{
			{Name: "temp", Type: "decimal", Label: "温度", Required: true},
			{Name: "count", Type: "number", Label: "袋数", Required: true},
			{Name: "note", Type: "text", Label: "备注"},
		},
	}, "admin-1")
	suite.Require().NoError(err)
	suite.form = created
}

// 测试创建记录：draft状态、归属与操作日志
func (suite *RecordServiceTestSuite) TestCreateRecord() {
	record, err := suite.records.CreateRecord(suite.form, models.Record{
		"temp":  4.2,
		"count": 12,
		"note":  "晨检正常",
	}, suite.actor)
	suite.Require().NoError(err)

	suite.Equal("draft", record["status"])
	suite.Equal("user-1", record["created_by"])
	suite.NotNil(record["id"])
	suite.Nil(record["reviewer_id"])

	// 操作日志已写入并携带请求来源
	var logs []models.ActivityLog
	suite.Require().NoError(suite.db.Find(&logs).Error)
	suite.Require().Len(logs, 1)
	suite.Equal("created", logs[0].Action)
	suite.Equal("user-1", logs[0].UserID)
	suite.Equal(suite.form.ID, logs[0].SubjectID)
	suite.Equal("10.0.0.8", logs[0].IPAddress)
}

// 测试缺失必填列时以列名报错且不写入任何行
func (suite *RecordServiceTestSuite) TestCreateRecordMissingRequired() {
	_, err := suite.records.CreateRecord(suite.form, models.Record{"note": "缺数据"}, suite.actor)
	suite.Require().Error(err)

	verr, ok := err.(*models.ValidationError)
	suite.Require().True(ok)
	suite.Contains(verr.Fields, "temp")
	suite.Contains(verr.Fields, "count")

	records, err := suite.records.ListRecords(suite.form)
	suite.Require().NoError(err)
	suite.Empty(records)
}

// 测试调用方提交的工作流字段被剥离
func (suite *RecordServiceTestSuite) TestCreateRecordStripsWorkflowFields() {
	record, err := suite.records.CreateRecord(suite.form, models.Record{
		"temp":        4.2,
		"count":       12,
		"status":      "approved",
		"reviewer_id": "intruder",
		"created_by":  "forged",
	}, suite.actor)
	suite.Require().NoError(err)

	suite.Equal("draft", record["status"])
	suite.Equal("user-1", record["created_by"])
	suite.Nil(record["reviewer_id"])
}

// 测试更新只影响用户数据列，工作流字段不受影响
func (suite *RecordServiceTestSuite) TestUpdateRecord() {
	created, err := suite.records.CreateRecord(suite.form, models.Record{
		"temp":  4.2,
		"count": 12,
		"note":  "晨检",
	}, suite.actor)
	suite.Require().NoError(err)
	recordID := toRecordID(suite.T(), created["id"])

	updated, err := suite.records.UpdateRecord(suite.form, recordID, models.Record{
		"temp":   4.4,
		"count":  12,
		"note":   "晨检复核",
		"status": "approved",
	}, suite.actor)
	suite.Require().NoError(err)

	suite.Equal("晨检复核", updated["note"])
	suite.Equal("draft", updated["status"])
	suite.EqualValues(12, updated["count"])
}

// 测试更新与创建同样走完整规则校验，必填列缺失即违规
func (suite *RecordServiceTestSuite) TestUpdateRecordOmittingRequired() {
	created, err := suite.records.CreateRecord(suite.form, models.Record{
		"temp":  4.2,
		"count": 12,
		"note":  "晨检",
	}, suite.actor)
	suite.Require().NoError(err)
	recordID := toRecordID(suite.T(), created["id"])

	// 空提交不得通过
	_, err = suite.records.UpdateRecord(suite.form, recordID, models.Record{}, suite.actor)
	suite.Require().Error(err)
	verr, ok := err.(*models.ValidationError)
	suite.Require().True(ok)
	suite.Contains(verr.Fields, "temp")
	suite.Contains(verr.Fields, "count")

	// 只提交部分必填列同样违规
	_, err = suite.records.UpdateRecord(suite.form, recordID, models.Record{"count": 13}, suite.actor)
	suite.Require().Error(err)
	verr, ok = err.(*models.ValidationError)
	suite.Require().True(ok)
	suite.Contains(verr.Fields, "temp")

	// 原记录未被触碰
	current, err := suite.records.GetRecord(suite.form, recordID)
	suite.Require().NoError(err)
	suite.EqualValues(12, current["count"])
	suite.Equal("晨检", current["note"])
}

// 测试更新不存在的记录
func (suite *RecordServiceTestSuite) TestUpdateRecordNotFound() {
	_, err := suite.records.UpdateRecord(suite.form, 9999, models.Record{"note": "无人"}, suite.actor)
	suite.Require().Error(err)
	_, ok := err.(*models.NotFoundError)
	suite.True(ok)
}

// 测试非法值更新不触碰已存数据
func (suite *RecordServiceTestSuite) TestUpdateRecordValidationKeepsRow() {
	created, err := suite.records.CreateRecord(suite.form, models.Record{
		"temp":  4.2,
		"count": 12,
	}, suite.actor)
	suite.Require().NoError(err)
	recordID := toRecordID(suite.T(), created["id"])

	_, err = suite.records.UpdateRecord(suite.form, recordID, models.Record{"count": "三袋"}, suite.actor)
	suite.Require().Error(err)
	_, ok := err.(*models.ValidationError)
	suite.True(ok)

	current, err := suite.records.GetRecord(suite.form, recordID)
	suite.Require().NoError(err)
	suite.EqualValues(12, current["count"])
}

// 测试删除后记录不可再访问
func (suite *RecordServiceTestSuite) TestDeleteRecord() {
	created, err := suite.records.CreateRecord(suite.form, models.Record{
		"temp":  4.2,
		"count": 12,
	}, suite.actor)
	suite.Require().NoError(err)
	recordID := toRecordID(suite.T(), created["id"])

	suite.Require().NoError(suite.records.DeleteRecord(suite.form, recordID, suite.actor))

	_, err = suite.records.GetRecord(suite.form, recordID)
	suite.Require().Error(err)
	_, ok := err.(*models.NotFoundError)
	suite.True(ok)

	err = suite.records.DeleteRecord(suite.form, recordID, suite.actor)
	suite.Require().Error(err)
	_, ok = err.(*models.NotFoundError)
	suite.True(ok)
}

// 测试匿名操作者不产生操作日志
func (suite *RecordServiceTestSuite) TestAnonymousActorSkipsActivityLog() {
	_, err := suite.records.CreateRecord(suite.form, models.Record{
		"temp":  4.2,
		"count": 12,
	}, activity.Actor{})
	suite.Require().NoError(err)

	var count int64
	suite.Require().NoError(suite.db.Model(&models.ActivityLog{}).Count(&count).Error)
	suite.Equal(int64(0), count)
}

func TestRecordServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RecordServiceTestSuite))
}

// toRecordID 归一化驱动返回的记录ID
func toRecordID(t *testing.T, value interface{}) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		t.Fatalf("无法识别的记录ID类型: %T", value)
		return 0
	}
}
