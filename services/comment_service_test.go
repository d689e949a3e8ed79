package services

import (
	"errors"
	"testing"

	"github.com/sahilchouksey/learnhub-api/model"
)

func TestCommentThread(t *testing.T) {
	f := newLenientFixture(t)
	comments := NewCommentService(f.db, f.catalog, nil)

	instructor := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	outsider := f.user(t, model.RoleStudent)
	course := f.course(t, instructor.ID, 0, 2)
	lesson, otherLesson := course.Lessons[0], course.Lessons[1]
	f.enroll(t, student.ID, course.ID)

	studentActor := Actor{UserID: student.ID, Role: model.RoleStudent}

	if _, err := comments.CreateComment(f.ctx, Actor{UserID: outsider.ID}, lesson.ID, CommentInput{Body: "hi"}); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("outsider error = %v, want ErrNotEnrolled", err)
	}
	if _, err := comments.CreateComment(f.ctx, studentActor, lesson.ID, CommentInput{Body: "<p> </p>"}); !errors.Is(err, errEmptyComment) {
		t.Fatalf("empty body error = %v, want validation", err)
	}

	root, err := comments.CreateComment(f.ctx, studentActor, lesson.ID, CommentInput{Body: "<script>x</script>Why?"})
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if root.Body != "Why?" {
		t.Fatalf("body = %q", root.Body)
	}

	reply, err := comments.CreateComment(f.ctx, Actor{UserID: instructor.ID, Role: model.RoleInstructor}, lesson.ID, CommentInput{Body: "Because.", ParentID: &root.ID})
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if _, err := comments.CreateComment(f.ctx, studentActor, otherLesson.ID, CommentInput{Body: "x", ParentID: &root.ID}); !errors.Is(err, errForeignParent) {
		t.Fatalf("cross-lesson reply error = %v, want validation", err)
	}

	list, total, err := comments.ListComments(f.ctx, studentActor, lesson.ID, Page{})
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if total != 2 || list[0].ID != root.ID || list[1].ID != reply.ID {
		t.Fatalf("list = %+v (total %d)", list, total)
	}

	if _, err := comments.UpdateComment(f.ctx, studentActor, reply.ID, "mine now"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("edit foreign comment error = %v, want ErrForbidden", err)
	}
	if err := comments.DeleteComment(f.ctx, Actor{UserID: outsider.ID}, root.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider delete error = %v, want ErrForbidden", err)
	}

	// the course instructor may moderate
	if err := comments.DeleteComment(f.ctx, Actor{UserID: instructor.ID, Role: model.RoleInstructor}, root.ID); err != nil {
		t.Fatalf("instructor delete: %v", err)
	}
	if n := f.count(t, &model.Comment{}, "lesson_id = ?", lesson.ID); n != 0 {
		t.Fatalf("comments left = %d, want replies removed too", n)
	}
}

func TestCommentsOnPreviewLessonAreReadable(t *testing.T) {
	f := newLenientFixture(t)
	comments := NewCommentService(f.db, f.catalog, nil)

	instructor := f.user(t, model.RoleInstructor)
	course := f.course(t, instructor.ID, 0, 1)
	lesson := course.Lessons[0]
	f.db.Model(&lesson).Update("is_preview", true)

	if _, _, err := comments.ListComments(f.ctx, Actor{}, lesson.ID, Page{}); err != nil {
		t.Fatalf("anonymous list on preview lesson: %v", err)
	}
	if _, err := comments.CreateComment(f.ctx, Actor{}, lesson.ID, CommentInput{Body: "hello"}); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("anonymous post error = %v, want ErrNotEnrolled", err)
	}
}
