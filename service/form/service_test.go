package form

import (
	"testing"

	"formhub-service/service/database"
	"formhub-service/service/models"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 创建内存数据库并迁移注册表结构
func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开内存数据库失败: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

// FormServiceTestSuite 表单注册服务测试套件
type FormServiceTestSuite struct {
	suite.Suite
	db          *gorm.DB
	provisioner *database.TableProvisioner
	service     *Service
}

func (suite *FormServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.provisioner = database.NewTableProvisioner(suite.db)
	suite.service = NewService(suite.db, suite.provisioner)
}

func (suite *FormServiceTestSuite) createRequest() *models.CreateFormRequest {
	return &models.CreateFormRequest{
		Name: "每日血库登记",
		Slug: "daily-log",
		Columns: models.ColumnSpecList{
			{Name: "temp", Type: "decimal", Label: "温度", Required: true},
			{Name: "note", Type: "text", Label: "备注"},
			{Name: "unit", Type: "enum", Label: "血液成分", Options: []string{"RBC", "FFP"}},
		},
	}
}

// 测试表单创建同时建立物理表，元数据与列顺序完整保留
func (suite *FormServiceTestSuite) TestCreateForm() {
	created, err := suite.service.CreateForm(suite.createRequest(), "admin-1")
	suite.Require().NoError(err)
	suite.NotEmpty(created.ID)
	suite.Equal("daily-log", created.Slug)
	suite.Require().NotNil(created.CreatedBy)
	suite.Equal("admin-1", *created.CreatedBy)

	exists, err := suite.provisioner.TableExists(created.TableName)
	suite.NoError(err)
	suite.True(exists)

	// 列配置按声明顺序回读
	loaded, err := suite.service.GetForm(created.ID)
	suite.Require().NoError(err)
	suite.Require().Len(loaded.ColumnsConfig, 3)
	suite.Equal("temp", loaded.ColumnsConfig[0].Name)
	suite.Equal("note", loaded.ColumnsConfig[1].Name)
	suite.Equal("unit", loaded.ColumnsConfig[2].Name)
	suite.Equal([]string{"RBC", "FFP"}, loaded.ColumnsConfig[2].Options)
}

// 测试定义校验收集全部违规字段
func (suite *FormServiceTestSuite) TestCreateFormValidation() {
	req := &models.CreateFormRequest{
		Name: "",
		Slug: "bad slug!",
		Columns: models.ColumnSpecList{
			{Name: "status", Type: "string", Label: "保留列"},
			{Name: "temp", Type: "geo", Label: ""},
			{Name: "temp", Type: "decimal", Label: "重复列"},
			{Name: "unit", Type: "enum", Label: "无选项"},
		},
	}

	_, err := suite.service.CreateForm(req, "admin-1")
	suite.Require().Error(err)

	verr, ok := err.(*models.ValidationError)
	suite.Require().True(ok)
	suite.Contains(verr.Fields, "name")
	suite.Contains(verr.Fields, "slug")
	suite.Contains(verr.Fields, "columns.0.name")
	suite.Contains(verr.Fields, "columns.1.type")
	suite.Contains(verr.Fields, "columns.1.label")
	suite.Contains(verr.Fields, "columns.2.name")
	suite.Contains(verr.Fields, "columns.3.options")
}

// 测试slug冲突
func (suite *FormServiceTestSuite) TestCreateFormSlugConflict() {
	_, err := suite.service.CreateForm(suite.createRequest(), "admin-1")
	suite.Require().NoError(err)

	_, err = suite.service.CreateForm(suite.createRequest(), "admin-1")
	suite.Require().Error(err)

	_, ok := err.(*models.ConflictError)
	suite.True(ok)
}

// 测试元数据更新与有记录后的slug变更拒绝
func (suite *FormServiceTestSuite) TestUpdateForm() {
	created, err := suite.service.CreateForm(suite.createRequest(), "admin-1")
	suite.Require().NoError(err)

	name := "夜间血库登记"
	enabled := true
	notifyAt := "20:30"
	updated, err := suite.service.UpdateForm(created.ID, &models.UpdateFormRequest{
		Name:                  &name,
		IsNotificationEnabled: &enabled,
		NotificationTime:      &notifyAt,
	})
	suite.Require().NoError(err)
	suite.Equal("夜间血库登记", updated.Name)
	suite.True(updated.IsNotificationEnabled)

	// 物理表尚无记录，slug可变更
	newSlug := "night-log"
	updated, err = suite.service.UpdateForm(created.ID, &models.UpdateFormRequest{Slug: &newSlug})
	suite.Require().NoError(err)
	suite.Equal("night-log", updated.Slug)

	// 写入一条记录后slug不可再变更
	err = suite.db.Exec(`INSERT INTO "`+created.TableName+`" (status, temp) VALUES (?, ?)`, "draft", 4.0).Error
	suite.Require().NoError(err)

	another := "other-log"
	_, err = suite.service.UpdateForm(created.ID, &models.UpdateFormRequest{Slug: &another})
	suite.Require().Error(err)
	_, ok := err.(*models.ConflictError)
	suite.True(ok)
}

// 测试通知时间格式校验
func (suite *FormServiceTestSuite) TestUpdateFormNotificationTime() {
	created, err := suite.service.CreateForm(suite.createRequest(), "admin-1")
	suite.Require().NoError(err)

	bad := "25:00"
	_, err = suite.service.UpdateForm(created.ID, &models.UpdateFormRequest{NotificationTime: &bad})
	suite.Require().Error(err)
	_, ok := err.(*models.ValidationError)
	suite.True(ok)
}

// 测试删除表单清理物理表，重复删除返回NotFound
func (suite *FormServiceTestSuite) TestDeleteForm() {
	created, err := suite.service.CreateForm(suite.createRequest(), "admin-1")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.DeleteForm(created.ID))

	exists, err := suite.provisioner.TableExists(created.TableName)
	suite.NoError(err)
	suite.False(exists)

	err = suite.service.DeleteForm(created.ID)
	suite.Require().Error(err)
	_, ok := err.(*models.NotFoundError)
	suite.True(ok)
}

// 测试删除后复用slug得到不同的物理表名
func (suite *FormServiceTestSuite) TestRecreateFormAfterDelete() {
	first, err := suite.service.CreateForm(suite.createRequest(), "admin-1")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.DeleteForm(first.ID))

	second, err := suite.service.CreateForm(suite.createRequest(), "admin-1")
	suite.Require().NoError(err)
	suite.NotEqual(first.ID, second.ID)

	exists, err := suite.provisioner.TableExists(second.TableName)
	suite.NoError(err)
	suite.True(exists)
}

// 测试列表返回全部表单
func (suite *FormServiceTestSuite) TestListForms() {
	_, err := suite.service.CreateForm(suite.createRequest(), "admin-1")
	suite.Require().NoError(err)

	second := suite.createRequest()
	second.Slug = "weekly-log"
	second.Name = "周度盘点"
	_, err = suite.service.CreateForm(second, "admin-1")
	suite.Require().NoError(err)

	forms, err := suite.service.ListForms()
	suite.Require().NoError(err)
	suite.Len(forms, 2)
	suite.NotEqual(forms[0].ID, forms[1].ID)
}

func TestFormServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FormServiceTestSuite))
}
