package bot

import (
	"strings"

	"github.com/google/uuid"
)

// Exact-match callback data values
const (
	cbMainMenu         = "main_menu"
	cbAdminPanel       = "admin_panel"
	cbAddCategory      = "add_category"
	cbAddCategoryRoot  = "addcat_root"
	cbAddCategorySub   = "addcat_sub"
	cbAddProduct       = "add_product"
	cbManageCategories = "manage_categories"
	cbManageProducts   = "manage_products"
	cbOrdersMenu       = "orders_menu"
	cbOrdersNew        = "orders_new"
	cbOrdersAll        = "orders_all"
	cbOrdersDoneAll    = "orders_done_all"
	cbSkipPhoto        = "skip_photo"
	cbClearAll         = "clear_all_data"
	cbClearAllConfirm  = "clear_all_confirm"
)

// Prefixed callback data values carrying an entity id
const (
	cbPrefixParentCategory  = "parent_cat_"
	cbPrefixProductCategory = "prod_cat_"
	cbPrefixDeleteCategory  = "del_cat_"
	cbPrefixViewProduct     = "view_prod_"
	cbPrefixToggleProduct   = "toggle_prod_"
	cbPrefixDeleteProduct   = "del_prod_"
	cbPrefixOrderDone       = "order_done_"
)

// callbackID extracts the entity id from prefixed callback data
func callbackID(data, prefix string) (uuid.UUID, bool) {
	raw, ok := strings.CutPrefix(data, prefix)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
