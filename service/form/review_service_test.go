package form

import (
	"testing"

	"formhub-service/service/activity"
	"formhub-service/service/database"
	"formhub-service/service/models"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// ReviewServiceTestSuite 审批状态机测试套件
type ReviewServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	records  *RecordService
	reviews  *ReviewService
	form     *models.DynamicForm
	recordID int64
	reviewer activity.Actor
}

var reviewerDecision = models.PermissionDecision{CanView: true, CanReview: true}

func (suite *ReviewServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	provisioner := database.NewTableProvisioner(suite.db)
	activityLogger := activity.NewLogger(suite.db)
	suite.records = NewRecordService(suite.db, activityLogger)
	suite.reviews = NewReviewService(suite.db, suite.records, activityLogger)
	suite.reviewer = activity.Actor{ID: "reviewer-1"}

	formService := NewService(suite.db, provisioner)
	created, err := formService.CreateForm(&models.CreateFormRequest{
		Name: "每日血库登记",
		Slug: "daily-log",
		Columns: models.ColumnSpecList{
			{Name: "temp", Type: "decimal", Label: "温度", Required: true},
		},
	}, "admin-1")
	suite.Require().NoError(err)
	suite.form = created

	record, err := suite.records.CreateRecord(created, models.Record{"temp": 4.2},
		activity.Actor{ID: "user-1"})
	suite.Require().NoError(err)
	suite.recordID = toRecordID(suite.T(), record["id"])
}

// 测试具备审核能力的操作者通过审批
func (suite *ReviewServiceTestSuite) TestApproveRecord() {
	record, err := suite.reviews.ReviewRecord(suite.form, suite.recordID,
		&models.ReviewRequest{Status: "approved", Comments: "数据完整，通过"},
		suite.reviewer, reviewerDecision)
	suite.Require().NoError(err)

	suite.Equal("approved", record["status"])
	suite.Equal("reviewer-1", record["reviewer_id"])
	suite.NotNil(record["reviewed_at"])
	suite.Equal("数据完整，通过", record["review_comments"])
}

// 测试退回记录
func (suite *ReviewServiceTestSuite) TestReturnRecord() {
	record, err := suite.reviews.ReviewRecord(suite.form, suite.recordID,
		&models.ReviewRequest{Status: "returned", Comments: "温度疑似异常，请复核"},
		suite.reviewer, reviewerDecision)
	suite.Require().NoError(err)

	suite.Equal("returned", record["status"])
	suite.Equal("温度疑似异常，请复核", record["review_comments"])
}

// 测试非法目标状态被拒绝且记录不被触碰
func (suite *ReviewServiceTestSuite) TestReviewInvalidTargetStatus() {
	for _, status := range []string{"draft", "in_review", "archived", ""} {
		_, err := suite.reviews.ReviewRecord(suite.form, suite.recordID,
			&models.ReviewRequest{Status: status}, suite.reviewer, reviewerDecision)
		suite.Require().Error(err)
		_, ok := err.(*models.ValidationError)
		suite.True(ok, "状态 %q 应返回校验错误", status)
	}

	record, err := suite.records.GetRecord(suite.form, suite.recordID)
	suite.Require().NoError(err)
	suite.Equal("draft", record["status"])
	suite.Nil(record["reviewer_id"])
}

// 测试缺少审核能力的操作者被拒绝
func (suite *ReviewServiceTestSuite) TestReviewUnauthorized() {
	editorOnly := models.PermissionDecision{CanView: true, CanEdit: true}

	_, err := suite.reviews.ReviewRecord(suite.form, suite.recordID,
		&models.ReviewRequest{Status: "approved"}, activity.Actor{ID: "user-1"}, editorOnly)
	suite.Require().Error(err)
	_, ok := err.(*models.AuthorizationError)
	suite.True(ok)

	record, err := suite.records.GetRecord(suite.form, suite.recordID)
	suite.Require().NoError(err)
	suite.Equal("draft", record["status"])
}

// 测试管理员无显式权限行也可审批
func (suite *ReviewServiceTestSuite) TestReviewAdminBypass() {
	admin := models.PermissionDecision{IsAdmin: true}

	record, err := suite.reviews.ReviewRecord(suite.form, suite.recordID,
		&models.ReviewRequest{Status: "approved"}, activity.Actor{ID: "admin-1"}, admin)
	suite.Require().NoError(err)
	suite.Equal("approved", record["status"])
}

// 测试审批不存在的记录
func (suite *ReviewServiceTestSuite) TestReviewRecordNotFound() {
	_, err := suite.reviews.ReviewRecord(suite.form, 9999,
		&models.ReviewRequest{Status: "approved"}, suite.reviewer, reviewerDecision)
	suite.Require().Error(err)
	_, ok := err.(*models.NotFoundError)
	suite.True(ok)
}

func TestReviewServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReviewServiceTestSuite))
}
