package dao

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/softdesk-lab/softdesk/dao/model"
)

// Sentinel errors shared by every accessor. Handlers map these onto
// the response taxonomy; nothing above this package inspects gorm
// errors directly.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("duplicate record")
)

// Store wraps the gorm connection with the accessors the handlers and
// the authorization engine consume. All methods honor the request
// context so caller cancellation bounds every query.
type Store struct {
	db *gorm.DB
}

// NewStore is used by tests that provide their own gorm connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}

//////////////////////////////////////////
// Users
//////////////////////////////////////////

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *Store) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := s.db.WithContext(ctx).Order("id").Find(&users).Error
	return users, translate(err)
}

// UpdateUser applies a partial update. The patch keys are column
// names; callers are responsible for keeping id and username out.
func (s *Store) UpdateUser(ctx context.Context, id uint, patch map[string]any) (*model.User, error) {
	res := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetUser(ctx, id)
}

func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.User{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

//////////////////////////////////////////
// Projects and membership
//////////////////////////////////////////

// CreateProject persists the project and its initial contributor set
// in one transaction.
func (s *Store) CreateProject(ctx context.Context, project *model.Project, contributorIDs []uint) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Contributors").Create(project).Error; err != nil {
			return err
		}
		for _, uid := range contributorIDs {
			pc := model.ProjectContributor{ProjectID: project.ID, UserID: uid}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&pc).Error; err != nil {
				return err
			}
		}
		return nil
	}))
}

func (s *Store) GetProject(ctx context.Context, id uint) (*model.Project, error) {
	var project model.Project
	if err := s.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, translate(err)
	}
	return &project, nil
}

// ListProjectsForUser returns the projects the user authored or
// contributes to.
func (s *Store) ListProjectsForUser(ctx context.Context, userID uint) ([]model.Project, error) {
	var projects []model.Project
	err := s.db.WithContext(ctx).
		Where("author_id = ?", userID).
		Or("id IN (?)", s.db.Model(&model.ProjectContributor{}).Select("project_id").Where("user_id = ?", userID)).
		Order("id").
		Find(&projects).Error
	return projects, translate(err)
}

func (s *Store) ListProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := s.db.WithContext(ctx).Order("id").Find(&projects).Error
	return projects, translate(err)
}

func (s *Store) UpdateProject(ctx context.Context, id uint, patch map[string]any) (*model.Project, error) {
	res := s.db.WithContext(ctx).Model(&model.Project{}).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetProject(ctx, id)
}

// DeleteProject removes the project and sweeps its issues, their
// comments and the membership rows in one transaction. The sweep is
// explicit rather than a database cascade so the contract holds on
// soft deletes too.
func (s *Store) DeleteProject(ctx context.Context, id uint) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Project{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&model.Issue{}).Error; err != nil {
			return err
		}
		return tx.Where("project_id = ?", id).Delete(&model.ProjectContributor{}).Error
	}))
}

// AddContributor inserts the membership row. ON CONFLICT DO NOTHING
// makes concurrent and repeated adds a no-op success.
func (s *Store) AddContributor(ctx context.Context, projectID, userID uint) error {
	pc := model.ProjectContributor{ProjectID: projectID, UserID: userID}
	return translate(s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&pc).Error)
}

// RemoveContributor deletes the membership row. Removing an absent
// contributor is a no-op success.
func (s *Store) RemoveContributor(ctx context.Context, projectID, userID uint) error {
	return translate(s.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&model.ProjectContributor{}).Error)
}

func (s *Store) IsContributor(ctx context.Context, userID, projectID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.ProjectContributor{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	return count > 0, translate(err)
}

func (s *Store) ListContributorIDs(ctx context.Context, projectID uint) ([]uint, error) {
	var ids []uint
	err := s.db.WithContext(ctx).Model(&model.ProjectContributor{}).
		Where("project_id = ?", projectID).
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, translate(err)
}

//////////////////////////////////////////
// Issues
//////////////////////////////////////////

func (s *Store) CreateIssue(ctx context.Context, issue *model.Issue) error {
	return translate(s.db.WithContext(ctx).Create(issue).Error)
}

func (s *Store) GetIssue(ctx context.Context, id uint) (*model.Issue, error) {
	var issue model.Issue
	if err := s.db.WithContext(ctx).First(&issue, id).Error; err != nil {
		return nil, translate(err)
	}
	return &issue, nil
}

func (s *Store) ListIssuesByProject(ctx context.Context, projectID uint) ([]model.Issue, error) {
	var issues []model.Issue
	err := s.db.WithContext(ctx).Where("project_id = ?", projectID).Order("id").Find(&issues).Error
	return issues, translate(err)
}

func (s *Store) UpdateIssue(ctx context.Context, id uint, patch map[string]any) (*model.Issue, error) {
	res := s.db.WithContext(ctx).Model(&model.Issue{}).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetIssue(ctx, id)
}

// AssignIssue sets the assignee with a keyed single-row update so
// concurrent reassignments serialize on the row.
func (s *Store) AssignIssue(ctx context.Context, id, contributorID uint) (*model.Issue, error) {
	return s.UpdateIssue(ctx, id, map[string]any{"contributor_id": contributorID})
}

// DeleteIssue removes the issue and sweeps its comments.
func (s *Store) DeleteIssue(ctx context.Context, id uint) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Issue{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("issue_id = ?", id).Delete(&model.Comment{}).Error
	}))
}

// CountIssuesByStatus returns the live issue count per status,
// consumed by the metrics exposition.
func (s *Store) CountIssuesByStatus(ctx context.Context) (map[model.IssueStatus]int64, error) {
	var rows []struct {
		Status model.IssueStatus
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&model.Issue{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	counts := make(map[model.IssueStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// ListAssignedIssues returns the issues assigned to the user within
// one project. No matches is an empty slice, not an error.
func (s *Store) ListAssignedIssues(ctx context.Context, userID, projectID uint) ([]model.Issue, error) {
	var issues []model.Issue
	err := s.db.WithContext(ctx).
		Where("contributor_id = ? AND project_id = ?", userID, projectID).
		Order("id").
		Find(&issues).Error
	return issues, translate(err)
}

//////////////////////////////////////////
// Comments
//////////////////////////////////////////

func (s *Store) CreateComment(ctx context.Context, comment *model.Comment) error {
	return translate(s.db.WithContext(ctx).Create(comment).Error)
}

func (s *Store) GetComment(ctx context.Context, id uint) (*model.Comment, error) {
	var comment model.Comment
	if err := s.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (s *Store) ListCommentsByIssue(ctx context.Context, issueID uint) ([]model.Comment, error) {
	var comments []model.Comment
	err := s.db.WithContext(ctx).Where("issue_id = ?", issueID).Order("id").Find(&comments).Error
	return comments, translate(err)
}

func (s *Store) UpdateComment(ctx context.Context, id uint, patch map[string]any) (*model.Comment, error) {
	res := s.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetComment(ctx, id)
}

func (s *Store) DeleteComment(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.Comment{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
