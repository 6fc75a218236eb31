package permission

import (
	"testing"

	"formhub-service/service/database"
	"formhub-service/service/models"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PermissionServiceTestSuite 权限服务测试套件
type PermissionServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *Service
	user    *models.User
	admin   *models.User
	form    *models.DynamicForm
}

func (suite *PermissionServiceTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	suite.Require().NoError(database.AutoMigrate(db))
	suite.db = db
	suite.service = NewService(db)

	suite.user = &models.User{Name: "王芳", Email: "wang@bloodbank.local", Password: "x", Role: models.RoleUser}
	suite.admin = &models.User{Name: "管理员", Email: "admin@bloodbank.local", Password: "x", Role: models.RoleAdmin}
	suite.Require().NoError(db.Create(suite.user).Error)
	suite.Require().NoError(db.Create(suite.admin).Error)

	suite.form = &models.DynamicForm{
		Name:      "每日血库登记",
		Slug:      "daily-log",
		TableName: "form_daily_log_1736400000",
		ColumnsConfig: models.ColumnSpecList{
			{Name: "temp", Type: "decimal", Label: "温度"},
		},
	}
	suite.Require().NoError(db.Create(suite.form).Error)
}

// 测试无权限行时默认全拒
func (suite *PermissionServiceTestSuite) TestResolveNoGrant() {
	decision, err := suite.service.Resolve(suite.user.ID, suite.form.ID)
	suite.Require().NoError(err)

	suite.False(decision.Allows("view"))
	suite.False(decision.Allows("edit"))
	suite.False(decision.Allows("delete"))
	suite.False(decision.Allows("review"))
}

// 测试权限行逐能力生效
func (suite *PermissionServiceTestSuite) TestResolveWithGrant() {
	_, err := suite.service.Upsert(suite.user.ID, suite.form.ID, true, true, false, false)
	suite.Require().NoError(err)

	decision, err := suite.service.Resolve(suite.user.ID, suite.form.ID)
	suite.Require().NoError(err)

	suite.True(decision.Allows("view"))
	suite.True(decision.Allows("edit"))
	suite.False(decision.Allows("delete"))
	suite.False(decision.Allows("review"))
	suite.False(decision.IsAdmin)
}

// 测试管理员角色无权限行也全量放行
func (suite *PermissionServiceTestSuite) TestResolveAdminBypass() {
	decision, err := suite.service.Resolve(suite.admin.ID, suite.form.ID)
	suite.Require().NoError(err)

	suite.True(decision.IsAdmin)
	suite.True(decision.Allows("view"))
	suite.True(decision.Allows("edit"))
	suite.True(decision.Allows("delete"))
	suite.True(decision.Allows("review"))
}

// 测试匿名与未知用户
func (suite *PermissionServiceTestSuite) TestResolveUnknownUser() {
	decision, err := suite.service.Resolve("", suite.form.ID)
	suite.Require().NoError(err)
	suite.False(decision.Allows("view"))

	decision, err = suite.service.Resolve("no-such-user", suite.form.ID)
	suite.Require().NoError(err)
	suite.False(decision.Allows("view"))
}

// 测试同一用户重复分配为幂等更新
func (suite *PermissionServiceTestSuite) TestUpsertIdempotent() {
	first, err := suite.service.Upsert(suite.user.ID, suite.form.ID, true, false, false, false)
	suite.Require().NoError(err)

	second, err := suite.service.Upsert(suite.user.ID, suite.form.ID, true, true, true, true)
	suite.Require().NoError(err)
	suite.Equal(first.ID, second.ID)

	var count int64
	suite.Require().NoError(suite.db.Model(&models.UserDocumentPermission{}).Count(&count).Error)
	suite.Equal(int64(1), count)

	decision, err := suite.service.Resolve(suite.user.ID, suite.form.ID)
	suite.Require().NoError(err)
	suite.True(decision.Allows("review"))
}

// 测试对不存在的用户或表单分配权限
func (suite *PermissionServiceTestSuite) TestUpsertMissingTargets() {
	_, err := suite.service.Upsert("no-such-user", suite.form.ID, true, false, false, false)
	suite.Require().Error(err)
	_, ok := err.(*models.NotFoundError)
	suite.True(ok)

	_, err = suite.service.Upsert(suite.user.ID, "no-such-form", true, false, false, false)
	suite.Require().Error(err)
	_, ok = err.(*models.NotFoundError)
	suite.True(ok)
}

// 测试可见用户查询
func (suite *PermissionServiceTestSuite) TestListViewers() {
	_, err := suite.service.Upsert(suite.user.ID, suite.form.ID, true, false, false, false)
	suite.Require().NoError(err)

	other := &models.User{Name: "李雷", Email: "li@bloodbank.local", Password: "x", Role: models.RoleUser}
	suite.Require().NoError(suite.db.Create(other).Error)
	_, err = suite.service.Upsert(other.ID, suite.form.ID, false, true, false, false)
	suite.Require().NoError(err)

	viewers, err := suite.service.ListViewers(suite.form.ID)
	suite.Require().NoError(err)
	suite.Require().Len(viewers, 1)
	suite.Equal(suite.user.ID, viewers[0].ID)
}

// 测试可访问表单清单
func (suite *PermissionServiceTestSuite) TestListAccessibleForms() {
	_, err := suite.service.Upsert(suite.user.ID, suite.form.ID, true, true, false, false)
	suite.Require().NoError(err)

	documents, err := suite.service.ListAccessibleForms(suite.user.ID)
	suite.Require().NoError(err)
	suite.Require().Len(documents, 1)
	suite.Equal(suite.form.ID, documents[0].ID)
	suite.True(documents[0].CanEdit)
	suite.False(documents[0].CanReview)

	// 管理员可见全部表单
	documents, err = suite.service.ListAccessibleForms(suite.admin.ID)
	suite.Require().NoError(err)
	suite.Require().Len(documents, 1)
	suite.True(documents[0].IsAdmin)
}

func TestPermissionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PermissionServiceTestSuite))
}
